package signing

import "errors"

var (
	// ErrConfigurationMissing is returned when the signing properties file does not exist.
	ErrConfigurationMissing = errors.New("signing properties file not found")
	// ErrIncompleteSigningConfig is returned when a required signing key is absent or empty.
	ErrIncompleteSigningConfig = errors.New("incomplete signing configuration")
	// ErrUnknownVariant is returned for build variants that are not recognised or not registered.
	ErrUnknownVariant = errors.New("unknown build variant")
	// ErrKeystoreMissing is returned when the referenced keystore file is required but absent.
	ErrKeystoreMissing = errors.New("keystore file not found")
)

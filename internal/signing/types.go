package signing

import (
	"fmt"
	"strings"
)

// Recognised keys in the signing properties file.
const (
	KeyAlias      = "keyAlias"
	KeyPassword   = "keyPassword"
	StoreFile     = "storeFile"
	StorePassword = "storePassword"
)

// requiredKeys is ordered so error messages are stable.
var requiredKeys = []string{KeyAlias, KeyPassword, StoreFile, StorePassword}

// BuildVariant names a build configuration that gets its own signing identity.
type BuildVariant string

const (
	Debug   BuildVariant = "debug"
	Release BuildVariant = "release"
)

// KnownVariants returns the variants the loader understands, in declaration order.
func KnownVariants() []BuildVariant {
	return []BuildVariant{Debug, Release}
}

// ParseVariant converts a user supplied name into a BuildVariant.
func ParseVariant(raw string) (BuildVariant, error) {
	name := BuildVariant(strings.ToLower(strings.TrimSpace(raw)))
	for _, v := range KnownVariants() {
		if v == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, raw)
}

func (v BuildVariant) String() string {
	return string(v)
}

// SigningProperties holds the values needed to sign an artifact.
// It is a value type: copies are independent and two loads of the same file compare equal.
type SigningProperties struct {
	KeyAlias      string `yaml:"keyAlias" json:"keyAlias"`
	KeyPassword   string `yaml:"keyPassword" json:"keyPassword"`
	StoreFile     string `yaml:"storeFile" json:"storeFile"`
	StorePassword string `yaml:"storePassword" json:"storePassword"`
}

// Validate reports ErrIncompleteSigningConfig listing every absent or empty field.
func (p SigningProperties) Validate() error {
	values := map[string]string{
		KeyAlias:      p.KeyAlias,
		KeyPassword:   p.KeyPassword,
		StoreFile:     p.StoreFile,
		StorePassword: p.StorePassword,
	}
	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(values[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteSigningConfig, strings.Join(missing, ", "))
	}
	return nil
}

// SigningConfig attaches SigningProperties to a build variant together with the
// APK signature schemes to apply.
type SigningConfig struct {
	Variant         BuildVariant
	Properties      SigningProperties
	EnableV1Signing bool
	EnableV2Signing bool
}

// NewSigningConfig returns a config with JAR (v1) signing disabled and APK Signature Scheme v2 enabled.
func NewSigningConfig(variant BuildVariant, props SigningProperties) SigningConfig {
	return SigningConfig{
		Variant:         variant,
		Properties:      props,
		EnableV1Signing: false,
		EnableV2Signing: true,
	}
}

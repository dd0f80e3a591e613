package signing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
)

// PropertySet is the raw key/value content of a signing properties file,
// including keys the loader does not recognise.
type PropertySet struct {
	path  string
	props *properties.Properties
}

// Path returns the file the set was read from, or "" when parsed from memory.
func (s PropertySet) Path() string {
	return s.path
}

// Get returns the raw value for key.
func (s PropertySet) Get(key string) (string, bool) {
	if s.props == nil {
		return "", false
	}
	return s.props.Get(key)
}

// Keys returns the keys in file order.
func (s PropertySet) Keys() []string {
	if s.props == nil {
		return nil
	}
	return s.props.Keys()
}

// Map returns a copy of all key/value pairs.
func (s PropertySet) Map() map[string]string {
	if s.props == nil {
		return map[string]string{}
	}
	return s.props.Map()
}

// LoadOptions controls how SigningProperties are derived from a PropertySet.
type LoadOptions struct {
	// ModuleDir is the base for a relative storeFile. Defaults to the
	// directory holding the properties file.
	ModuleDir string
	// RequireStoreFile makes extraction fail with ErrKeystoreMissing when the
	// resolved keystore is not a regular file.
	RequireStoreFile bool
}

func newLoader() *properties.Loader {
	// Java reads .properties as ISO-8859-1 and never expands ${...}.
	return &properties.Loader{
		Encoding:         properties.ISO_8859_1,
		DisableExpansion: true,
	}
}

// LoadProperties reads a Java style properties file.
// A missing file yields ErrConfigurationMissing.
func LoadProperties(path string) (PropertySet, error) {
	props, err := newLoader().LoadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PropertySet{}, fmt.Errorf("%w: %s", ErrConfigurationMissing, path)
		}
		return PropertySet{}, fmt.Errorf("read properties %s: %w", path, err)
	}
	return PropertySet{path: path, props: props}, nil
}

// ParseProperties parses properties content held in memory. source is used as
// the set's path and may be empty.
func ParseProperties(data []byte, source string) (PropertySet, error) {
	props, err := newLoader().LoadBytes(data)
	if err != nil {
		return PropertySet{}, fmt.Errorf("parse properties: %w", err)
	}
	return PropertySet{path: source, props: props}, nil
}

// PropertiesFromSet extracts the four signing values from set.
func PropertiesFromSet(set PropertySet, opts LoadOptions) (SigningProperties, error) {
	value := func(key string) string {
		v, _ := set.Get(key)
		return v
	}

	props := SigningProperties{
		KeyAlias:      value(KeyAlias),
		KeyPassword:   value(KeyPassword),
		StoreFile:     value(StoreFile),
		StorePassword: value(StorePassword),
	}
	if err := props.Validate(); err != nil {
		if set.Path() != "" {
			return SigningProperties{}, fmt.Errorf("%s: %w", set.Path(), err)
		}
		return SigningProperties{}, err
	}

	baseDir := opts.ModuleDir
	if baseDir == "" && set.Path() != "" {
		baseDir = filepath.Dir(set.Path())
	}
	props.StoreFile = resolveStoreFile(props.StoreFile, baseDir)

	if opts.RequireStoreFile {
		if err := checkKeystore(props.StoreFile); err != nil {
			return SigningProperties{}, err
		}
	}

	return props, nil
}

// Load reads path and extracts its SigningProperties in one step.
func Load(path string, opts LoadOptions) (SigningProperties, error) {
	set, err := LoadProperties(path)
	if err != nil {
		return SigningProperties{}, err
	}
	return PropertiesFromSet(set, opts)
}

func resolveStoreFile(raw, baseDir string) string {
	path := strings.TrimSpace(raw)
	if filepath.IsAbs(path) || baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

func checkKeystore(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrKeystoreMissing, path)
		}
		return fmt.Errorf("stat keystore: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrKeystoreMissing, path)
	}
	return nil
}

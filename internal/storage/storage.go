package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/eugenenazirov/keysign/internal/signing"
)

var (
	// ErrNotRegistered indicates no signing config has been attached to the variant yet.
	ErrNotRegistered = errors.New("no signing config registered for variant")
	// ErrUnknownBuildType indicates the build type has no signing config mapping.
	ErrUnknownBuildType = errors.New("unknown build type")
)

// DefaultBuildTypes maps each build type to the signing config it uses.
// release uses the release config; debug keeps the debug config.
func DefaultBuildTypes() map[string]signing.BuildVariant {
	return map[string]signing.BuildVariant{
		"debug":   signing.Debug,
		"release": signing.Release,
	}
}

// Registry holds the signing configs attached to build variants.
type Registry interface {
	Register(cfg signing.SigningConfig) error
	Lookup(variant signing.BuildVariant) (signing.SigningConfig, error)
	Variants() []signing.BuildVariant
}

// MemoryRegistry keeps signing configs in-memory and guards access with a RWMutex.
type MemoryRegistry struct {
	mu         sync.RWMutex
	configs    map[signing.BuildVariant]signing.SigningConfig
	buildTypes map[string]signing.BuildVariant
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an empty registry with the default build type mapping.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		configs:    make(map[signing.BuildVariant]signing.SigningConfig),
		buildTypes: DefaultBuildTypes(),
	}
}

// Register attaches cfg to its variant. Incomplete properties are rejected so
// a registered config can always sign.
func (r *MemoryRegistry) Register(cfg signing.SigningConfig) error {
	if cfg.Variant == "" {
		return fmt.Errorf("%w: empty variant", signing.ErrUnknownVariant)
	}
	if err := cfg.Properties.Validate(); err != nil {
		return fmt.Errorf("register %s: %w", cfg.Variant, err)
	}

	r.mu.Lock()
	r.configs[cfg.Variant] = cfg
	r.mu.Unlock()

	return nil
}

// Lookup returns the config attached to variant.
func (r *MemoryRegistry) Lookup(variant signing.BuildVariant) (signing.SigningConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[variant]
	if !ok {
		return signing.SigningConfig{}, fmt.Errorf("%w: %s", ErrNotRegistered, variant)
	}
	return cfg, nil
}

// Variants returns the registered variants sorted by name.
func (r *MemoryRegistry) Variants() []signing.BuildVariant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]signing.BuildVariant, 0, len(r.configs))
	for variant := range r.configs {
		out = append(out, variant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetBuildType points a build type at the signing config of variant.
func (r *MemoryRegistry) SetBuildType(buildType string, variant signing.BuildVariant) error {
	name := normalizeBuildType(buildType)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownBuildType)
	}

	r.mu.Lock()
	r.buildTypes[name] = variant
	r.mu.Unlock()

	return nil
}

// BuildTypeVariant returns the variant whose signing config buildType uses.
func (r *MemoryRegistry) BuildTypeVariant(buildType string) (signing.BuildVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variant, ok := r.buildTypes[normalizeBuildType(buildType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBuildType, buildType)
	}
	return variant, nil
}

func normalizeBuildType(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

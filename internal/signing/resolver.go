package signing

import (
	"fmt"
	"slices"
)

// Resolver hands out signing identities for build variants. Every variant is
// backed by the same PropertySet.
type Resolver struct {
	set      PropertySet
	opts     LoadOptions
	variants []BuildVariant
}

// NewResolver binds variants to set. With no variants the known ones are used.
func NewResolver(set PropertySet, opts LoadOptions, variants ...BuildVariant) *Resolver {
	if len(variants) == 0 {
		variants = KnownVariants()
	}
	return &Resolver{
		set:      set,
		opts:     opts,
		variants: slices.Clone(variants),
	}
}

// Variants returns the variants this resolver serves.
func (r *Resolver) Variants() []BuildVariant {
	return slices.Clone(r.variants)
}

// Resolve returns the SigningProperties for variant.
func (r *Resolver) Resolve(variant BuildVariant) (SigningProperties, error) {
	if !slices.Contains(r.variants, variant) {
		return SigningProperties{}, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	props, err := PropertiesFromSet(r.set, r.opts)
	if err != nil {
		return SigningProperties{}, fmt.Errorf("resolve %s: %w", variant, err)
	}
	return props, nil
}

// ResolveConfig returns a SigningConfig with default signature schemes for variant.
func (r *Resolver) ResolveConfig(variant BuildVariant) (SigningConfig, error) {
	props, err := r.Resolve(variant)
	if err != nil {
		return SigningConfig{}, err
	}
	return NewSigningConfig(variant, props), nil
}

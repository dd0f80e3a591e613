package application

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/eugenenazirov/keysign/internal/config"
	"github.com/eugenenazirov/keysign/internal/signing"
	"github.com/eugenenazirov/keysign/internal/storage"
)

// App encapsulates the loaded signing properties and the variant registry.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	path     string
	resolver *signing.Resolver
	registry *storage.MemoryRegistry
}

// New locates and loads the signing properties file named by cfg.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	path, err := locatePropertiesFile(cfg.PropertiesFile)
	if err != nil {
		return nil, err
	}

	set, err := signing.LoadProperties(path)
	if err != nil {
		return nil, err
	}

	registry := storage.NewMemoryRegistry()
	for buildType, variant := range cfg.BuildTypes {
		if err := registry.SetBuildType(buildType, variant); err != nil {
			return nil, fmt.Errorf("failed to map build type: %w", err)
		}
	}

	opts := signing.LoadOptions{
		ModuleDir:        cfg.ModuleDir,
		RequireStoreFile: cfg.RequireStoreFile,
	}
	resolver := signing.NewResolver(set, opts, cfg.Variants...)

	logger.Debug("signing properties loaded",
		zap.String("path", path),
		zap.Int("keys", len(set.Keys())),
	)

	return &App{
		cfg:      cfg,
		logger:   logger,
		path:     path,
		resolver: resolver,
		registry: registry,
	}, nil
}

// PropertiesPath returns the properties file the application loaded.
func (a *App) PropertiesPath() string {
	return a.path
}

// Variants returns the configured build variants.
func (a *App) Variants() []signing.BuildVariant {
	return a.resolver.Variants()
}

// RegisteredVariants returns the variants whose signing config has been
// resolved and attached so far, sorted by name.
func (a *App) RegisteredVariants() []signing.BuildVariant {
	return a.registry.Variants()
}

// Resolve returns the signing config for variant, attaching it to the
// registry on first use.
func (a *App) Resolve(variant signing.BuildVariant) (signing.SigningConfig, error) {
	if cfg, err := a.registry.Lookup(variant); err == nil {
		return cfg, nil
	}

	cfg, err := a.resolver.ResolveConfig(variant)
	if err != nil {
		return signing.SigningConfig{}, err
	}
	cfg.EnableV1Signing = a.cfg.EnableV1Signing
	cfg.EnableV2Signing = a.cfg.EnableV2Signing

	if err := a.registry.Register(cfg); err != nil {
		return signing.SigningConfig{}, err
	}

	a.logger.Info("signing identity resolved",
		zap.Stringer("variant", variant),
		zap.String("key_alias", cfg.Properties.KeyAlias),
		zap.String("store_file", cfg.Properties.StoreFile),
	)
	return cfg, nil
}

// ResolveBuildType returns the signing config used by buildType.
func (a *App) ResolveBuildType(buildType string) (signing.SigningConfig, error) {
	variant, err := a.registry.BuildTypeVariant(buildType)
	if err != nil {
		return signing.SigningConfig{}, err
	}
	return a.Resolve(variant)
}

// Check resolves every configured variant and reports all failures together.
func (a *App) Check() ([]signing.SigningConfig, error) {
	var (
		resolved []signing.SigningConfig
		errs     error
	)
	for _, variant := range a.resolver.Variants() {
		cfg, err := a.Resolve(variant)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		resolved = append(resolved, cfg)
	}
	return resolved, errs
}

// locatePropertiesFile resolves a relative name against the nearest ancestor of
// the working directory that contains it.
func locatePropertiesFile(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	path, err := resolveProjectPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", signing.ErrConfigurationMissing, name)
	}
	return path, nil
}

// resolveProjectPath locates a file relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}

package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/keysign/internal/signing"
)

const (
	defaultPropertiesFile = "key.properties"
	defaultLogLevel       = "info"
	defaultOutput         = OutputYAML
)

// Supported output formats for a resolved signing identity.
const (
	OutputYAML       = "yaml"
	OutputJSON       = "json"
	OutputProperties = "properties"
)

var outputFormats = []string{OutputYAML, OutputJSON, OutputProperties}

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	PropertiesFile   string
	ModuleDir        string
	Variants         []signing.BuildVariant
	BuildTypes       map[string]signing.BuildVariant
	EnableV1Signing  bool
	EnableV2Signing  bool
	RequireStoreFile bool
	RevealSecrets    bool
	LogLevel         string
	Output           string
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	PropertiesFile   string            `yaml:"properties_file"`
	ModuleDir        string            `yaml:"module_dir"`
	Variants         []string          `yaml:"variants"`
	BuildTypes       map[string]string `yaml:"build_types"`
	Signing          yamlSigning       `yaml:"signing"`
	RequireStoreFile *bool             `yaml:"require_store_file"`
	LogLevel         string            `yaml:"log_level"`
	Output           string            `yaml:"output"`
}

// yamlSigning represents the signature scheme section in YAML.
type yamlSigning struct {
	V1 *bool `yaml:"v1"`
	V2 *bool `yaml:"v2"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile       string
	PropertiesFile   *string
	ModuleDir        *string
	Variants         *string
	LogLevel         *string
	Output           *string
	RequireStoreFile *bool
	RevealSecrets    *bool
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, err
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func defaultConfig() Config {
	buildTypes := make(map[string]signing.BuildVariant)
	for _, variant := range signing.KnownVariants() {
		buildTypes[variant.String()] = variant
	}
	return Config{
		PropertiesFile:  defaultPropertiesFile,
		Variants:        signing.KnownVariants(),
		BuildTypes:      buildTypes,
		EnableV1Signing: false,
		EnableV2Signing: true,
		LogLevel:        defaultLogLevel,
		Output:          defaultOutput,
	}
}

func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.PropertiesFile != "" {
		cfg.PropertiesFile = yamlCfg.PropertiesFile
	}

	if yamlCfg.ModuleDir != "" {
		cfg.ModuleDir = yamlCfg.ModuleDir
	}

	if len(yamlCfg.Variants) > 0 {
		variants, err := parseVariants(yamlCfg.Variants)
		if err != nil {
			return fmt.Errorf("parse variants: %w", err)
		}
		cfg.Variants = variants
	}

	for buildType, name := range yamlCfg.BuildTypes {
		variant, err := signing.ParseVariant(name)
		if err != nil {
			return fmt.Errorf("build type %q: %w", buildType, err)
		}
		cfg.BuildTypes[strings.ToLower(strings.TrimSpace(buildType))] = variant
	}

	if yamlCfg.Signing.V1 != nil {
		cfg.EnableV1Signing = *yamlCfg.Signing.V1
	}

	if yamlCfg.Signing.V2 != nil {
		cfg.EnableV2Signing = *yamlCfg.Signing.V2
	}

	if yamlCfg.RequireStoreFile != nil {
		cfg.RequireStoreFile = *yamlCfg.RequireStoreFile
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.Output != "" {
		cfg.Output = yamlCfg.Output
	}

	return nil
}

func applyEnvConfig(cfg *Config) error {
	if path := strings.TrimSpace(os.Getenv("KEYSIGN_PROPERTIES_FILE")); path != "" {
		cfg.PropertiesFile = path
	}

	if dir := strings.TrimSpace(os.Getenv("KEYSIGN_MODULE_DIR")); dir != "" {
		cfg.ModuleDir = dir
	}

	if raw := strings.TrimSpace(os.Getenv("KEYSIGN_VARIANTS")); raw != "" {
		variants, err := parseVariants(strings.Split(raw, ","))
		if err != nil {
			return fmt.Errorf("KEYSIGN_VARIANTS: %w", err)
		}
		cfg.Variants = variants
	}

	if level := strings.TrimSpace(os.Getenv("KEYSIGN_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if output := strings.TrimSpace(os.Getenv("KEYSIGN_OUTPUT")); output != "" {
		cfg.Output = output
	}

	return nil
}

func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.PropertiesFile != nil && *overrides.PropertiesFile != "" {
		cfg.PropertiesFile = *overrides.PropertiesFile
	}

	if overrides.ModuleDir != nil && *overrides.ModuleDir != "" {
		cfg.ModuleDir = *overrides.ModuleDir
	}

	if overrides.Variants != nil && *overrides.Variants != "" {
		variants, err := parseVariants(strings.Split(*overrides.Variants, ","))
		if err != nil {
			return fmt.Errorf("parse variants: %w", err)
		}
		cfg.Variants = variants
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.Output != nil && *overrides.Output != "" {
		cfg.Output = *overrides.Output
	}

	if overrides.RequireStoreFile != nil {
		cfg.RequireStoreFile = *overrides.RequireStoreFile
	}

	if overrides.RevealSecrets != nil {
		cfg.RevealSecrets = *overrides.RevealSecrets
	}

	return nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.PropertiesFile) == "" {
		return fmt.Errorf("properties file cannot be empty")
	}
	if len(cfg.Variants) == 0 {
		return fmt.Errorf("at least one build variant is required")
	}
	if !cfg.EnableV1Signing && !cfg.EnableV2Signing {
		return fmt.Errorf("at least one signature scheme must be enabled")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if !slices.Contains(outputFormats, cfg.Output) {
		return fmt.Errorf("output must be one of %s, got %q", strings.Join(outputFormats, ", "), cfg.Output)
	}
	return nil
}

// parseVariants converts variant names into BuildVariants, skipping blanks and duplicates.
func parseVariants(raw []string) ([]signing.BuildVariant, error) {
	variants := make([]signing.BuildVariant, 0, len(raw))
	for _, name := range raw {
		if strings.TrimSpace(name) == "" {
			continue
		}
		variant, err := signing.ParseVariant(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(variants, variant) {
			variants = append(variants, variant)
		}
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("no build variants provided")
	}
	return variants, nil
}

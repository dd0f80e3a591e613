package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/eugenenazirov/keysign/internal/application"
	"github.com/eugenenazirov/keysign/internal/config"
	"github.com/eugenenazirov/keysign/internal/logging"
	"github.com/eugenenazirov/keysign/internal/signing"
)

// Gradle resolves storeFile against the app module, not the project root.
const moduleDirHelp = "Directory a relative storeFile is resolved against; defaults to the directory of the properties file, " +
	"while Gradle uses the app module (pass android/app to match it)"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var terminate = os.Exit

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	kingpinApp := kingpin.New("keysign", "Resolves release signing credentials from key.properties for each build variant")
	kingpinApp.UsageWriter(stderr)
	kingpinApp.ErrorWriter(stderr)
	kingpinApp.Terminate(terminate)

	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	propertiesFile := kingpinApp.Flag("properties", "Signing properties file, searched upward from the working directory when relative").String()
	moduleDir := kingpinApp.Flag("module-dir", moduleDirHelp).String()
	variants := kingpinApp.Flag("variants", "Comma-separated build variants to serve").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	output := kingpinApp.Flag("output", "Output format (yaml, json, properties)").Short('o').String()
	reveal := kingpinApp.Flag("reveal", "Print passwords instead of masking them").Bool()
	requireStoreFile := kingpinApp.Flag("require-store-file", "Fail when the keystore file does not exist").Bool()

	resolveCmd := kingpinApp.Command("resolve", "Print the signing identity for a build variant")
	resolveVariant := resolveCmd.Arg("variant", "Build variant (debug, release)").Required().String()
	buildTypeCmd := kingpinApp.Command("build-type", "Print the signing identity used by a build type")
	buildTypeName := buildTypeCmd.Arg("name", "Build type name").Required().String()
	checkCmd := kingpinApp.Command("check", "Verify every configured variant resolves")
	variantsCmd := kingpinApp.Command("variants", "List configured build variants")

	command, err := kingpinApp.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "keysign: %v\n", err)
		return exitUsage
	}

	overrides := &config.CLIOverrides{
		ConfigFile:     *configFile,
		PropertiesFile: propertiesFile,
		ModuleDir:      moduleDir,
		Variants:       variants,
		LogLevel:       logLevel,
		Output:         output,
	}
	if *reveal {
		overrides.RevealSecrets = reveal
	}
	if *requireStoreFile {
		overrides.RequireStoreFile = requireStoreFile
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(stderr, "keysign: failed to load configuration: %v\n", err)
		return exitUsage
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "keysign: failed to initialize logger: %v\n", err)
		return exitUsage
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Error("failed to load signing configuration", zap.Error(err))
		return exitFailure
	}

	switch command {
	case resolveCmd.FullCommand():
		variant, err := signing.ParseVariant(*resolveVariant)
		if err != nil {
			logger.Error("invalid build variant", zap.Error(err))
			return exitUsage
		}
		return printIdentity(app, logger, stdout, func() (signing.SigningConfig, error) {
			return app.Resolve(variant)
		})
	case buildTypeCmd.FullCommand():
		return printIdentity(app, logger, stdout, func() (signing.SigningConfig, error) {
			return app.ResolveBuildType(*buildTypeName)
		})
	case checkCmd.FullCommand():
		_, err := app.Check()
		for _, variant := range app.RegisteredVariants() {
			fmt.Fprintf(stdout, "ok\t%s\n", variant)
		}
		if err != nil {
			for _, e := range multierr.Errors(err) {
				logger.Error("signing configuration check failed", zap.Error(e))
			}
			return exitFailure
		}
		return exitOK
	case variantsCmd.FullCommand():
		for _, variant := range app.Variants() {
			fmt.Fprintln(stdout, variant)
		}
		return exitOK
	}

	return exitUsage
}

func printIdentity(app *application.App, logger *zap.Logger, stdout io.Writer, resolve func() (signing.SigningConfig, error)) int {
	sc, err := resolve()
	if err != nil {
		logger.Error("failed to resolve signing identity", zap.Error(err))
		return exitFailure
	}
	if err := app.Render(stdout, sc); err != nil {
		logger.Error("failed to render signing identity", zap.Error(err))
		return exitFailure
	}
	return exitOK
}

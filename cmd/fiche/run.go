package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	productsheet "github.com/alnah/go-productsheet"
	"github.com/alnah/go-productsheet/internal/assets"
	"github.com/alnah/go-productsheet/internal/config"
	"github.com/alnah/go-productsheet/internal/hints"
	"github.com/alnah/go-productsheet/internal/render"
	"github.com/alnah/go-productsheet/internal/store"
	"github.com/alnah/go-productsheet/internal/webhook"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage     = errors.New("invalid usage")
	ErrReadInput = errors.New("failed to read input")
	ErrWritePDF  = errors.New("failed to write PDF file")
)

// defaultConfigName is looked up when neither --config nor FICHE_CONFIG is set.
const defaultConfigName = "fiche"

// command runs one subcommand and returns its error.
type command func(ctx context.Context, args []string, env *Environment) error

var commands = map[string]command{
	"generate": runGenerate,
	"export":   runExport,
	"preview":  runPreview,
	"parse":    runParse,
	"badges":   runBadges,
	"serve":    runServe,
}

// runMain dispatches args and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	name, rest := args[1], args[2:]
	switch name {
	case "help", "-h", "--help":
		return runHelp(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "fiche %s\n", Version)
		return ExitSuccess
	case "doctor":
		return runDoctorCmd(rest, env)
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", name)
		printUsage(env.Stderr)
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := cmd(ctx, rest, env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, env.webhookURL))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// usageError marks flag parsing failures so they map to ExitUsage.
func usageError(err error) error {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// loadConfig resolves the configuration: the named file (flag, then
// FICHE_CONFIG, then an optional fiche.yaml), then FICHE_* variables.
func loadConfig(nameOrPath string) (*config.Config, error) {
	envCfg := loadEnvConfig()
	if nameOrPath == "" {
		nameOrPath = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	var err error
	switch {
	case nameOrPath != "":
		if cfg, err = config.LoadConfig(nameOrPath); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	default:
		loaded, err := config.LoadConfig(defaultConfigName)
		if err == nil {
			cfg = loaded
		} else if !errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newWebhook returns the injected webhook or builds one from cfg.
// A nil webhook without error means none is configured.
func newWebhook(cfg *config.Config, env *Environment, log *zap.Logger) (productsheet.Webhook, error) {
	env.webhookURL = cfg.Webhook.URL
	if env.Webhook != nil {
		return env.Webhook, nil
	}
	if cfg.Webhook.URL == "" {
		return nil, nil
	}
	return webhook.NewClient(cfg.Webhook.URL,
		webhook.WithTimeout(cfg.Webhook.Timeout),
		webhook.WithBadgesURL(cfg.Webhook.BadgesURL),
		webhook.WithBadgeImageURL(cfg.Webhook.BadgeImageURL),
		webhook.WithLogger(log),
	)
}

// buildService creates the product sheet service from cfg.
func buildService(cfg *config.Config, env *Environment, log *zap.Logger) (*productsheet.Service, error) {
	opts := []productsheet.Option{
		productsheet.WithLogger(log),
		productsheet.WithDevice(cfg.Export.Device),
		productsheet.WithBackground(cfg.Export.Background),
		productsheet.WithDefaultStyles(cfg.Style),
	}
	if env.Now != nil {
		opts = append(opts, productsheet.WithClock(env.Now))
	}
	if cfg.Export.Scale > 0 {
		opts = append(opts, productsheet.WithScale(cfg.Export.Scale))
	}

	wh, err := newWebhook(cfg, env, log)
	if err != nil {
		return nil, err
	}
	if wh != nil {
		opts = append(opts, productsheet.WithWebhook(wh))
	}

	if cfg.Assets.BasePath != "" {
		resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
		if err != nil {
			return nil, fmt.Errorf("loading assets: %w", err)
		}
		opts = append(opts, productsheet.WithAssetLoader(resolver))
	}

	opts = append(opts, env.ServiceOptions...)
	return productsheet.New(opts...)
}

// sessionDir resolves where the CLI session lives: flag, config, then
// <user cache dir>/fiche.
func sessionDir(flagDir string, cfg *config.Config) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if cfg.Session.Dir != "" {
		return cfg.Session.Dir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating session directory: %w", err)
	}
	return filepath.Join(cache, "fiche"), nil
}

func openStore(flagDir string, cfg *config.Config) (*store.File, error) {
	dir, err := sessionDir(flagDir, cfg)
	if err != nil {
		return nil, err
	}
	return store.OpenFile(dir)
}

// validateDevice checks the --device flag before it reaches WithDevice,
// which panics on unknown values.
func validateDevice(device string) error {
	switch strings.ToLower(device) {
	case "", config.DeviceAuto, config.DeviceMobile, config.DeviceDesktop:
		return nil
	}
	return fmt.Errorf("%w: --device %q (must be auto, mobile, or desktop)", ErrUsage, device)
}

func validateScale(scale int) error {
	if scale < 0 || scale > productsheet.MaxScale {
		return fmt.Errorf("%w: --scale must be between 1 and %d", ErrUsage, productsheet.MaxScale)
	}
	return nil
}

// mergeExportFlags applies export flags over cfg. CLI values win.
func mergeExportFlags(f *exportFlags, cfg *config.Config) error {
	if err := validateDevice(f.device); err != nil {
		return err
	}
	if err := validateScale(f.scale); err != nil {
		return err
	}
	if f.output != "" {
		cfg.Export.OutputDir = f.output
	}
	if f.device != "" {
		cfg.Export.Device = strings.ToLower(f.device)
	}
	if f.scale > 0 {
		cfg.Export.Scale = f.scale
	}
	return nil
}

// outputDir returns the export directory, defaulting to the working directory.
func outputDir(cfg *config.Config) string {
	if cfg.Export.OutputDir == "" {
		return "."
	}
	return cfg.Export.OutputDir
}

// hintFor returns an actionable hint for err, or "". webhookURL is the
// endpoint the command used, if any.
func hintFor(err error, webhookURL string) string {
	switch {
	case errors.Is(err, productsheet.ErrBrowserConnect),
		errors.Is(err, productsheet.ErrPageLoad):
		return hints.ForBrowserConnect()
	case errors.Is(err, webhook.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, webhook.ErrConnection):
		return hints.ForConnection(webhookURL)
	case errors.Is(err, productsheet.ErrNoWebhook),
		errors.Is(err, webhook.ErrNoBadgeEndpoint):
		return hints.ForMissingWebhook()
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if dir, derr := os.UserConfigDir(); derr == nil {
			searched = append(searched, filepath.Join(dir, "fiche", defaultConfigName+".yaml"))
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, productsheet.ErrNoSessionContent):
		return hints.ForNoSession()
	case errors.Is(err, ErrWritePDF):
		return hints.ForOutputDirectory()
	case errors.Is(err, render.ErrUnknownStyle):
		names := make([]string, 0, len(render.Knobs))
		for _, k := range render.Knobs {
			names = append(names, k.Name)
		}
		return hints.ForStyleKnob(names)
	case errors.Is(err, productsheet.ErrInvalidProductName):
		return hints.ForProductName()
	}
	return ""
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"go.uber.org/zap"

	productsheet "github.com/alnah/go-productsheet"
	"github.com/alnah/go-productsheet/internal/config"
	"github.com/alnah/go-productsheet/internal/render"
)

// runGenerate generates a sheet, stores it as the current session and
// exports it unless --no-export is set.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseGenerateFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}

	productName, err := productsheet.ValidateProductName(strings.Join(positional, " "))
	if err != nil {
		return err
	}
	styles, err := parseStyleArgs(flags.styles)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	if err := mergeExportFlags(&flags.export, cfg); err != nil {
		return err
	}
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --timeout %q (e.g., 45s, 2m)", ErrUsage, flags.timeout)
		}
		cfg.Webhook.Timeout = d
	}

	log := newLogger(env.Stderr, flags.common)
	defer func() { _ = log.Sync() }()

	svc, err := buildService(cfg, env, log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	st, err := openStore(flags.sessionDir, cfg)
	if err != nil {
		return err
	}

	sess, err := svc.Generate(ctx, productName, st, flags.badges...)
	if err != nil {
		return err
	}
	for _, kv := range styles {
		if err := sess.SetStyle(kv[0], kv[1]); err != nil {
			return err
		}
	}
	log.Debug("session stored", zap.String("path", st.Path()))

	if flags.noExport {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stderr, "Session stored in %s\n", st.Path())
		}
		return nil
	}
	return exportSession(ctx, sess, cfg, env)
}

// runExport exports the stored session again.
func runExport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: export takes no arguments, got %q", ErrUsage, positional[0])
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	if err := mergeExportFlags(&flags.export, cfg); err != nil {
		return err
	}

	log := newLogger(env.Stderr, flags.common)
	defer func() { _ = log.Sync() }()

	svc, err := buildService(cfg, env, log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	st, err := openStore(flags.sessionDir, cfg)
	if err != nil {
		return err
	}
	sess, err := svc.Load(st)
	if err != nil {
		return err
	}
	return exportSession(ctx, sess, cfg, env)
}

// exportSession writes the PDF into the output directory and prints its path.
func exportSession(ctx context.Context, sess *productsheet.Session, cfg *config.Config, env *Environment) error {
	res, err := sess.ExportFile(ctx, outputDir(cfg))
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
		return err
	}
	fmt.Fprintln(env.Stdout, res.Path)
	return nil
}

// parseStyleArgs splits --style name=value pairs, validating each knob.
func parseStyleArgs(args []string) ([][2]string, error) {
	out := make([][2]string, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("%w: --style %q (want name=value)", ErrUsage, arg)
		}
		if _, err := render.NormalizeStyle(name, value); err != nil {
			return nil, err
		}
		out = append(out, [2]string{name, value})
	}
	return out, nil
}

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// runPreview prints the preview HTML of the stored session.
func runPreview(_ context.Context, args []string, env *Environment) error {
	flags, _, err := parsePreviewFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	cfg, err := loadConfig(flags.common.config)
	if err != nil {
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
	log.Debug("session loaded", zap.String("path", st.Path()), zap.String("product", sess.ProductName()))
	_, err = fmt.Fprintln(env.Stdout, sess.Preview())
	return err
}

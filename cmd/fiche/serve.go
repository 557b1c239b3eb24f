package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-productsheet/internal/server"
)

const shutdownTimeout = 10 * time.Second

// runServe runs the HTTP API until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, _, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}

	log := serverLogger(env.Stderr, flags.common)
	defer func() { _ = log.Sync() }()

	svc, err := buildService(cfg, env, log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	api := server.New(svc,
		server.WithLogger(log),
		server.WithRequestTimeout(cfg.Webhook.Timeout+server.DefaultRequestTimeout),
		server.WithMaxSessions(flags.maxSessions),
	)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %v", ErrUsage, cfg.Server.Addr, err)
	}
	srv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("listening", zap.String("addr", ln.Addr().String()))
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Listening on http://%s\n", ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down", zap.Int("open_sessions", api.Len()))
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

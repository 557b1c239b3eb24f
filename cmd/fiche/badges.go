package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alnah/go-productsheet/internal/envelope"
	"github.com/alnah/go-productsheet/internal/webhook"
)

// badgeLister is satisfied by webhooks that report listing failures.
type badgeLister interface {
	FetchBadges(ctx context.Context) ([]envelope.BadgeOption, error)
}

var _ badgeLister = (*webhook.Client)(nil)

// runBadges prints the badge options offered by the webhook.
func runBadges(ctx context.Context, args []string, env *Environment) error {
	flags, _, err := parseBadgesFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	log := newLogger(env.Stderr, flags.common)
	defer func() { _ = log.Sync() }()

	wh, err := newWebhook(cfg, env, log)
	if err != nil {
		return err
	}
	if wh == nil {
		return webhook.ErrNoBadgeEndpoint
	}

	var opts []envelope.BadgeOption
	if l, ok := wh.(badgeLister); ok {
		if opts, err = l.FetchBadges(ctx); err != nil {
			return err
		}
	} else {
		opts = wh.ListBadges(ctx)
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if flags.grouped {
			return enc.Encode(envelope.GroupBadges(opts))
		}
		return enc.Encode(opts)
	}

	if !flags.grouped {
		printBadgeTable(env.Stdout, opts)
		return nil
	}
	g := envelope.GroupBadges(opts)
	for _, section := range []struct {
		title string
		opts  []envelope.BadgeOption
	}{
		{"Logos", g.Logos},
		{"Atouts", g.Atouts},
		{"Autres", g.Others},
	} {
		if len(section.opts) == 0 {
			continue
		}
		fmt.Fprintf(env.Stdout, "%s:\n", section.title)
		printBadgeTable(env.Stdout, section.opts)
	}
	return nil
}

func printBadgeTable(w io.Writer, opts []envelope.BadgeOption) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, o := range opts {
		fmt.Fprintf(tw, "  %s\t%s\n", o.Value, o.Label)
	}
	_ = tw.Flush()
}

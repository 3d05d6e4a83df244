package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/events"
)

func watchCommand(s *settings) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow ledger changes from the event feed",
		Long: "Follow ledger changes published to the AMQP feed. Requires AMQP_URL.\n" +
			"Only the logged in identity's changes are shown unless --all is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			if a.feed == nil {
				return fmt.Errorf("event feed not available: set AMQP_URL to a reachable broker")
			}
			identityID := ""
			if id, err := a.active(); err == nil && !all {
				identityID = id.ID
			}

			ctx, stop := ShutdownContext(cmd.Context())
			defer stop()

			a.view.info("Watching %s (Ctrl+C to stop)", a.cfg.AMQPQueue)
			err := follow(ctx, a.feed, identityID, a.view.event)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Show changes of every identity")
	return cmd
}

type consumer interface {
	Consume(ctx context.Context, handler events.Handler) error
}

// follow runs the consumer and the renderer side by side; either stopping
// stops both.
func follow(ctx context.Context, feed consumer, identityID string, render func(events.Event)) error {
	g, ctx := errgroup.WithContext(ctx)
	stream := make(chan events.Event)

	g.Go(func() error {
		defer close(stream)
		return feed.Consume(ctx, func(ctx context.Context, e events.Event) error {
			if identityID != "" && e.IdentityID != identityID {
				return nil
			}
			select {
			case stream <- e:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	g.Go(func() error {
		for e := range stream {
			render(e)
		}
		return nil
	})

	return g.Wait()
}

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raffaelramalhorosa/techfeed/internal/models"
	"github.com/raffaelramalhorosa/techfeed/internal/poller"
	"github.com/raffaelramalhorosa/techfeed/internal/render"
	"github.com/raffaelramalhorosa/techfeed/internal/store"
)

type fetchOptions struct {
	category string
	limit    int
	open     int
	noColor  bool
}

func newFetchCmd(a *app) *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load the feed once and print the articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.fetch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "only show articles in this section")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "show at most this many articles (0 = all)")
	cmd.Flags().IntVar(&opts.open, "open", 0, "open the article at this position")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	return cmd
}

func (a *app) fetch(cmd *cobra.Command, opts fetchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := a.pipeline()
	if err != nil {
		return err
	}

	st := store.New()
	poll := poller.New(pipeline, a.prober(), st, a.cfg.Feed.Endpoint, 0, a.logger)
	snap := poll.Refresh(ctx)

	out := cmd.OutOrStdout()
	adapter := render.NewAdapter(render.WriterNavigator{W: out}, render.NopThumbnails{}, a.logger)
	rows := adapter.Rows(st.Articles(opts.category, opts.limit))

	state := snap.State
	if state == models.StateReady && len(rows) == 0 {
		state = models.StateEmpty
	}
	render.NewPrinter(out, !opts.noColor).State(state, len(rows), snap.Err)

	if snap.Err != nil {
		return snap.Err
	}
	if len(rows) > 0 {
		if err := render.WriteTable(out, rows, render.DefaultHeadlineWidth); err != nil {
			return err
		}
	}
	if opts.open > 0 {
		return adapter.Select(rows, opts.open-1)
	}
	return nil
}

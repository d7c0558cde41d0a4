package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raffaelramalhorosa/techfeed/internal/config"
	"github.com/raffaelramalhorosa/techfeed/internal/feed"
	"github.com/raffaelramalhorosa/techfeed/internal/logger"
)

// app carries what every subcommand needs once config is loaded.
type app struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "techfeed",
		Short: "Technology news feed reader",
		Long: `techfeed loads the technology section of a news content API and
shows it as a list of articles.

Example usage:
  techfeed fetch                 # load once and print the articles
  techfeed fetch --limit 5       # only the first five
  techfeed serve                 # refresh in the background and serve JSON`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./techfeed.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newServeCmd(a), newFetchCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	a.logger = logger.New(os.Stderr, level, cfg.Logging.Format)

	a.logger.Debug("configuration loaded",
		"format", cfg.Feed.Format,
		"refresh_interval", cfg.Feed.RefreshInterval,
		"check_connectivity", cfg.Feed.CheckConnectivity,
	)
	return nil
}

func (a *app) pipeline() (*feed.Pipeline, error) {
	parser, err := feed.ParserFor(a.cfg.Feed.Format)
	if err != nil {
		return nil, err
	}
	fetcher := feed.NewHTTPFetcher(a.cfg.Feed.ConnectTimeout, a.cfg.Feed.ReadTimeout)
	return feed.NewPipeline(fetcher, parser, a.logger), nil
}

func (a *app) prober() feed.Prober {
	if !a.cfg.Feed.CheckConnectivity {
		return nil
	}
	return feed.NewDNSProber(a.cfg.Feed.ProbeTimeout)
}

package cmd

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"beatbridge/catalog"
	"beatbridge/config"
	"beatbridge/logger"
	"beatbridge/resolver"
	"beatbridge/sentry"
)

var (
	envFile string
	cfg     *config.ConfigStruct
)

var rootCmd = &cobra.Command{
	Use:   "beatbridge",
	Short: "Resolve songs, video ids and video URLs to playable audio",
	Long: `beatbridge serves an HTTP API that maps a search query, a video id or a
video URL to an audio descriptor, and ships a small terminal player that
drives it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	// serve is also the root's default action, so both accept --port
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().StringVar(&servePort, "port", "", "listen port, overrides PORT")
	}

	rootCmd.AddCommand(serveCmd, resolveCmd, playCmd)
}

func Execute() error {
	defer sentry.Flush()
	return rootCmd.ExecuteContext(context.Background())
}

func setup(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("Error loading %s: %v", envFile, err)
	}

	cfg = config.NewConfig()
	logger.Setup(cfg.Options.LogLevel)

	if err := sentry.Init(cfg.Sentry); err != nil {
		return err
	}
	return nil
}

// newResolver loads the catalog once and builds the resolver every command shares.
func newResolver() (*resolver.Resolver, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	return resolver.New(cat, resolver.Placeholder{
		AudioURL:        cfg.Catalog.PlaceholderAudioURL,
		DurationSeconds: cfg.Catalog.PlaceholderDuration,
	}), nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"beatbridge/resolver"
	"beatbridge/sentry"
)

var (
	resolveID  string
	resolveURL string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [query...]",
	Short: "Resolve one lookup locally and print the descriptor as JSON",
	Example: `  beatbridge resolve taylor swift
  beatbridge resolve --id dQw4w9WgXcQ
  beatbridge resolve --url 'https://www.youtube.com/watch?v=dQw4w9WgXcQ'`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveID, "id", "", "video id to resolve")
	resolveCmd.Flags().StringVar(&resolveURL, "url", "", "video URL to resolve")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, span := sentry.StartCommandTransaction(cmd.Context(), "resolve")
	defer span.Finish()

	res, err := newResolver()
	if err != nil {
		return err
	}

	// more than one of these is rejected by the resolver
	req := resolver.LookupRequest{
		Query: strings.Join(args, " "),
		ID:    resolveID,
		URL:   resolveURL,
	}
	result, err := res.Lookup(ctx, req)
	if err != nil {
		sentry.ReportError(ctx, err)
		return err
	}
	if result.Fallback {
		log.WithField("module", "resolve").Infof("%q is not in the catalog, using the default entry", result.Input)
	}

	out, err := json.MarshalIndent(result.Descriptor, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

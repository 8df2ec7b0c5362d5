package main

import (
	"context"

	"github.com/spf13/cobra"

	"doc-splitter/internal/app"
	"doc-splitter/internal/splitter"
)

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "splitter",
		Short: "Split Markdown and JSON documents into fixed-size line chunks",
		Long: `splitter walks INPUT_PATH recursively and writes every .md and .json file
as chunks of CHUNK_SIZE lines into the flat OUTPUT_PATH directory.

Output files are named <parent-dirs>-<stem>-<n><ext>. Settings come from the
environment or a .env file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load (default .env if present)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	return cmd
}

func run(ctx context.Context, opts app.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deps, err := app.Build(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Log.Warn("failed to close outputs", "err", err)
		}
	}()

	s := splitter.New(deps.Config, deps.Registry, deps.Sinks, deps.Manifest, deps.Log)
	_, err = s.Run(ctx)
	return err
}

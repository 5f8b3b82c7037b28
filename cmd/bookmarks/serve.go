package main

import (
	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/bookmarks/internal/app"
	"github.com/vadimbarashkov/bookmarks/internal/config"
)

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			return app.Run(cmd.Context(), cfg)
		},
	}
}

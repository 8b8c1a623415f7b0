package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/dogwalk/internal/server"
	"github.com/dmitrijs2005/dogwalk/internal/server/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	var configFile, envFile string
	root := &cobra.Command{
		Use:           "dogwalk-server",
		Short:         "Development origin for the dogwalk client",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(config.LoadOptions{
				ConfigFile: configFile,
				EnvFile:    envFile,
				Flags:      cmd.Flags(),
			})
			if err != nil {
				return err
			}
			app, err := server.NewApp(cmd.Context(), cfg, os.Stderr)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	root.Flags().StringVarP(&configFile, "config", "c", "", "JSON config file")
	root.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file")
	config.RegisterFlags(root.Flags())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

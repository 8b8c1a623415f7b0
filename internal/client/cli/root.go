package cli

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/dogwalk/internal/client/client"
	"github.com/dmitrijs2005/dogwalk/internal/client/config"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
)

type app struct {
	env   *Env
	cfg   *config.Config
	stdin *bufio.Reader
}

// withClient opens the client for the duration of fn.
func (a *app) withClient(ctx context.Context, fn func(c *client.Client) error) error {
	log := logging.New(a.env.Stderr, a.cfg.LogLevel)
	opts := append([]client.Option{client.WithLogger(log)}, a.env.ClientOptions...)
	c, err := client.New(ctx, a.cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			log.Warn(ctx, "close client", "error", cerr)
		}
	}()
	return fn(c)
}

// NewRootCmd builds the dogwalk command tree.
func NewRootCmd(env *Env) *cobra.Command {
	a := &app{env: env, stdin: bufio.NewReader(env.Stdin)}
	var configFile, envFile string

	root := &cobra.Command{
		Use:           "dogwalk",
		Short:         "Client for the dogwalk origin",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{
				ConfigFile: configFile,
				EnvFile:    envFile,
				Flags:      cmd.Flags(),
				LookupEnv:  env.LookupEnv,
			})
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}
	root.SetIn(env.Stdin)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "JSON config file")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file")
	config.RegisterFlags(pf)

	root.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		profileCmd(a),
		getCmd(a),
		imageCmd(a),
		postsCmd(a),
		cacheCmd(a),
	)
	return root
}

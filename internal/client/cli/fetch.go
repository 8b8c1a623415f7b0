package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/dogwalk/internal/client/cache"
	"github.com/dmitrijs2005/dogwalk/internal/client/client"
	"github.com/dmitrijs2005/dogwalk/internal/client/services"
)

var ErrNoContent = errors.New("no such content")

func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show your profile or another user's",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				var p services.Profile
				var err error
				if len(args) == 1 {
					p, err = c.Users.Profile(cmd.Context(), args[0])
				} else {
					p, err = c.Users.MyProfile(cmd.Context())
				}
				if err != nil {
					return err
				}
				return a.printJSON(p)
			})
		},
	}
	cmd.AddCommand(profileUpdateCmd(a))
	return cmd
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "get <path>",
		Short:   "GET a path on the origin through the request pipeline",
		Example: "  dogwalk get users/me/profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				body, err := c.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = a.env.Stdout.Write(body)
				return err
			})
		},
	}
}

func imageCmd(a *app) *cobra.Command {
	var tierName, output string
	cmd := &cobra.Command{
		Use:     "image <id>",
		Short:   "Fetch content through the cache",
		Example: "  dogwalk image images/dogs/1.svg --tier document -o rex.svg",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := cache.ParseTier(tierName)
			if err != nil {
				return err
			}
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				data, err := c.Images.Image(cmd.Context(), args[0], tier)
				if err != nil {
					return err
				}
				if data == nil {
					return fmt.Errorf("%s: %w", args[0], ErrNoContent)
				}
				if output == "" || output == "-" {
					_, err = a.env.Stdout.Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o600); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(a.env.Stderr, "Wrote %d bytes to %s\n", len(data), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&tierName, "tier", "t", cache.TierCache.String(), "cache tier: cache or document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func cacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the durable content cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Remove orphaned blobs and dangling tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				rep, err := c.Cache.Prune(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(a.env.Stdout, "Removed %d orphan blobs and %d dangling tags\n", rep.OrphanBlobs, rep.DanglingTags)
				return nil
			})
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				if err := c.Cache.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(a.env.Stdout, "Cache cleared")
				return nil
			})
		},
	})
	return cmd
}

package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/dogwalk/internal/client/client"
	"github.com/dmitrijs2005/dogwalk/internal/client/services"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.env.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func profileUpdateCmd(a *app) *cobra.Command {
	var upd services.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace your editable profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				p, err := c.Users.UpdateProfile(cmd.Context(), upd)
				if err != nil {
					return err
				}
				return a.printJSON(p)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&upd.Nick, "nick", "", "display name")
	f.StringVar(&upd.Address, "address", "", "road address")
	f.Float64Var(&upd.Longitude, "lon", 0, "longitude")
	f.Float64Var(&upd.Latitude, "lat", 0, "latitude")
	f.IntVar(&upd.Points, "points", 0, "points")
	f.Float64Var(&upd.Temperature, "temperature", 0, "manner temperature")
	_ = cmd.MarkFlagRequired("nick")
	return cmd
}

func postsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Read and write the community feed",
	}
	cmd.AddCommand(
		postsListCmd(a),
		postsShowCmd(a),
		postsCommentCmd(a),
		postsLikeCmd(a),
		postsWriteCmd(a),
	)
	return cmd
}

func postsListCmd(a *app) *cobra.Command {
	var (
		categories []string
		limit      int
		all        bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				pager := services.NewPostPager(c.Posts, limit, categories...)
				for {
					page, err := pager.Next(cmd.Context())
					if err != nil {
						return err
					}
					for _, p := range page {
						fmt.Fprintf(a.env.Stdout, "%s\t%s\t%s\t%d views\n", p.ID, p.Category, p.Title, p.Views)
					}
					if !all || pager.Done() {
						return nil
					}
				}
			})
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "only these categories")
	cmd.Flags().IntVarP(&limit, "limit", "n", services.DefaultPageLimit, "posts per page")
	cmd.Flags().BoolVar(&all, "all", false, "follow the cursor to the last page")
	return cmd
}

func postsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show one post and count a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				p, err := c.Posts.Post(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printJSON(p)
			})
		},
	}
}

func postsCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				cm, err := c.Posts.AddComment(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.env.Stdout, "Comment %s added\n", cm.ID)
				return nil
			})
		},
	}
}

func postsLikeCmd(a *app) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post, or take the like back with --undo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				liked, err := c.Posts.Like(cmd.Context(), args[0], !undo)
				if err != nil {
					return err
				}
				if liked {
					fmt.Fprintln(a.env.Stdout, "Liked")
				} else {
					fmt.Fprintln(a.env.Stdout, "Unliked")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "remove your like")
	return cmd
}

func postsWriteCmd(a *app) *cobra.Command {
	var (
		in        services.PostInput
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Publish a post, optionally with an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var img *services.Upload
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read %s: %w", imagePath, err)
				}
				img = &services.Upload{Name: filepath.Base(imagePath), ContentType: http.DetectContentType(data), Data: data}
			}
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				p, err := c.Posts.Write(cmd.Context(), in, img)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.env.Stdout, "Post %s published\n", p.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Category, "category", "", "feed category")
	f.StringVar(&in.Title, "title", "", "post title")
	f.StringVar(&in.Content, "content", "", "post body")
	f.IntVar(&in.Price, "price", 0, "price")
	f.Float64Var(&in.Longitude, "lon", 0, "longitude")
	f.Float64Var(&in.Latitude, "lat", 0, "latitude")
	f.StringVarP(&imagePath, "image", "i", "", "image file to attach")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

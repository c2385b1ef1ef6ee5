/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/render"
	"github.com/hawknews/hawk-translation/internal/store"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage the posts available for translation",
	Long:  `Add, list, import and delete the posts the host serves.`,
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(viper.GetString("database.path"))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		posts, err := db.ListPosts(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list posts: %w", err)
		}

		if len(posts) == 0 {
			fmt.Println("No posts.")
			return nil
		}

		links := render.Permalinks{SiteURL: viper.GetString("site.url")}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tAUTHOR\tUPDATED\tTITLE\tURL")
		for _, p := range posts {
			title := p.Title
			if len(title) > 40 {
				title = title[:37] + "..."
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Status, p.Author, p.UpdatedAt.Format("2006-01-02 15:04"), title, links.For(&p))
		}
		return w.Flush()
	},
}

var (
	postTitle    string
	postSlug     string
	postBody     string
	postBodyFile string
	postAuthor   string
	postStatus   string
)

var postsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a post",
	Long: `Add a post. The body is Markdown or HTML, given inline or read from a file.

Example:
  hawk-translation posts add --title "Council votes on budget" --body-file story.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := postBody
		if postBodyFile != "" {
			data, err := os.ReadFile(postBodyFile)
			if err != nil {
				return fmt.Errorf("failed to read body file: %w", err)
			}
			body = string(data)
		}

		slug := postSlug
		if slug == "" {
			slug = postTitle
		}

		db, err := store.New(viper.GetString("database.path"))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		p := &internal.Post{Title: postTitle, Slug: slug, Body: body, Author: postAuthor, Status: postStatus}
		if err := db.SavePost(context.Background(), p); err != nil {
			return fmt.Errorf("failed to save post: %w", err)
		}
		fmt.Printf("Added post %d: %s\n", p.ID, p.Title)
		return nil
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post id %q", args[0])
		}

		db, err := store.New(viper.GetString("database.path"))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeletePost(context.Background(), id); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		fmt.Printf("Deleted post: %d\n", id)
		return nil
	},
}

// postsFile is the layout accepted by "posts import".
type postsFile struct {
	Posts []internal.Post `yaml:"posts"`
}

var postsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import posts from a YAML file",
	Long: `Import posts from a YAML file. Posts with an id replace the stored post,
posts without one are added.

Example file:
  posts:
    - title: Council votes on budget
      author: newsroom
      status: publish
      body: |
        The **council** voted on Tuesday.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}
		var file postsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse import file: %w", err)
		}

		db, err := store.New(viper.GetString("database.path"))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		ctx := context.Background()
		for i := range file.Posts {
			p := &file.Posts[i]
			if p.Slug == "" {
				p.Slug = p.Title
			}
			if err := db.SavePost(ctx, p); err != nil {
				return fmt.Errorf("failed to save post %q: %w", p.Title, err)
			}
		}
		fmt.Printf("Imported %d posts.\n", len(file.Posts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)

	postsAddCmd.Flags().StringVarP(&postTitle, "title", "t", "", "Post title (required)")
	postsAddCmd.Flags().StringVar(&postSlug, "slug", "", "URL slug (derived from the title if empty)")
	postsAddCmd.Flags().StringVarP(&postBody, "body", "b", "", "Post body")
	postsAddCmd.Flags().StringVarP(&postBodyFile, "body-file", "f", "", "Read the post body from a file")
	postsAddCmd.Flags().StringVarP(&postAuthor, "author", "a", "", "Author name")
	postsAddCmd.Flags().StringVar(&postStatus, "status", "draft", "Post status")
	postsAddCmd.MarkFlagRequired("title")

	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsAddCmd)
	postsCmd.AddCommand(postsDeleteCmd)
	postsCmd.AddCommand(postsImportCmd)
}

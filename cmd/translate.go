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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/langs"
	"github.com/hawknews/hawk-translation/internal/orchestrator"
)

var (
	translatePostID    int64
	translateLanguages []string
	translateUser      string
	translateTimeout   time.Duration
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Submit a post for translation",
	Long: `Submit a post to the Hawk News Service API for one or more languages.

The languages default to the default_languages setting. Each language is
submitted once, in parallel, with the same permission and configuration
checks the editor side box applies. The command prints the job id or the
error for every language.

Example:
  hawk-translation translate --post 12 --languages es,ht --user editor`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		db, opts, err := openSettings(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		users, err := loadUsers()
		if err != nil {
			return err
		}

		languages := translateLanguages
		if len(languages) == 0 {
			cfg, err := opts.Load(ctx)
			if err != nil {
				return err
			}
			languages = cfg.DefaultLanguages
		}
		languages, err = langs.NormalizeAll(languages)
		if err != nil {
			return err
		}
		if len(languages) == 0 {
			return fmt.Errorf("no target languages given and default_languages is empty")
		}

		handler := buildHandler(db, opts, users, newIssuer())
		orch := orchestrator.New(handler, orchestrator.OrchestratorConfig{Timeout: translateTimeout})

		result := orch.Execute(ctx, internal.Caller{User: translateUser}, translatePostID, languages)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tNAME\tRESULT")
		for _, r := range result.Results {
			name := langs.Name(r.Language)
			if name == "" {
				name = "-"
			}
			outcome := "error: " + r.Result.Error
			if r.Result.Success {
				outcome = "job " + jobLabel(r.Result.JobID)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Language, name, outcome)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("Submitted: %d/%d\n", result.Succeeded, len(languages))
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d submissions failed", result.Failed, len(languages))
		}
		return nil
	},
}

func jobLabel(id *string) string {
	if id == nil {
		return "(no job id)"
	}
	return *id
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().Int64VarP(&translatePostID, "post", "p", 0, "Post ID (required)")
	translateCmd.Flags().StringSliceVarP(&translateLanguages, "languages", "l", nil, "Target language codes (comma-separated, default from settings)")
	translateCmd.Flags().StringVarP(&translateUser, "user", "u", "admin", "User to submit as (must be able to edit posts)")
	translateCmd.Flags().DurationVar(&translateTimeout, "timeout", 30*time.Second, "Upper bound per language, on top of the request timeout")

	translateCmd.MarkFlagRequired("post")
}

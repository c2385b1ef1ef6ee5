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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hawknews/hawk-translation/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage the plugin settings",
	Long: `List, read and change the plugin settings stored in the database.

Known keys: api_key, api_base_url, default_tier, default_languages.`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, opts, err := openSettings(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for _, key := range settings.Keys {
			v, err := opts.Get(ctx, key)
			if err != nil {
				return err
			}
			if key == settings.KeyAPIKey {
				v = maskKey(v)
			}
			fmt.Fprintf(w, "%s\t%s\n", key, v)
		}
		return w.Flush()
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, opts, err := openSettings(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		v, err := opts.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. default_languages takes a comma-separated list.

Example:
  hawk-translation settings set default_tier reviewed
  hawk-translation settings set default_languages es,fr,ht`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, opts, err := openSettings(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := opts.Set(ctx, args[0], args[1]); err != nil {
			return err
		}
		logger.Infow("setting changed", "key", args[0])
		fmt.Printf("Saved %s\n", args[0])
		return nil
	},
}

var settingsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Create missing settings with their defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openSettings(context.Background())
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Settings installed.")
		return nil
	},
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsInstallCmd)
}

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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hawknews/hawk-translation/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin web host",
	Long: `Run the admin web host.

Routes:
  /wp-admin/options-general.php?page=hawk-translation   settings page
  /wp-admin/post.php?post=<id>&action=edit               post edit screen
  /wp-admin/admin-ajax.php                               async endpoint

Users authenticate with HTTP basic auth against the users list in the
config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, opts, err := openSettings(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		users, err := loadUsers()
		if err != nil {
			return err
		}

		tokens := newIssuer()
		srv, err := web.New(web.Deps{
			Users:        users,
			Tokens:       tokens,
			Options:      opts,
			Posts:        db,
			Translations: buildHandler(db, opts, users, tokens),
			Log:          logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		httpSrv := &http.Server{
			Addr:              viper.GetString("server.addr"),
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Infow("listening", "addr", httpSrv.Addr, "site_url", viper.GetString("site.url"))
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

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

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/hawknews/hawk-translation/internal/auth"
	"github.com/hawknews/hawk-translation/internal/hawk"
	"github.com/hawknews/hawk-translation/internal/nonce"
	"github.com/hawknews/hawk-translation/internal/render"
	"github.com/hawknews/hawk-translation/internal/settings"
	"github.com/hawknews/hawk-translation/internal/store"
	"github.com/hawknews/hawk-translation/internal/submit"
	"github.com/hawknews/hawk-translation/internal/validator"
)

// openSettings opens the database and makes sure every plugin option exists.
func openSettings(ctx context.Context) (*store.Store, *settings.Settings, error) {
	db, err := store.New(viper.GetString("database.path"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	opts := settings.New(db)
	if err := opts.Install(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, opts, nil
}

// loadUsers reads the users list from configuration.
func loadUsers() (*auth.Directory, error) {
	var users []auth.User
	if err := viper.UnmarshalKey("users", &users); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return auth.NewDirectory(users)
}

// newIssuer returns the anti-forgery token issuer. Without a configured
// secret, tokens only survive until the process exits.
func newIssuer() *nonce.Issuer {
	secret := viper.GetString("security.secret")
	if secret == "" {
		logger.Warn("security.secret is not set, using a random secret for this process")
		secret = uuid.NewString()
	}
	return nonce.New(secret)
}

// buildHandler wires the translation request handler to its collaborators.
func buildHandler(db *store.Store, opts *settings.Settings, users *auth.Directory, tokens *nonce.Issuer) *submit.Handler {
	deps := submit.Deps{
		Auth:       users,
		Tokens:     tokens,
		Posts:      db,
		Renderer:   render.New(),
		Links:      render.Permalinks{SiteURL: viper.GetString("site.url")},
		Config:     opts,
		Translator: hawk.NewClient(logger),
		Log:        logger,
	}
	if viper.GetBool("translation.check_source") {
		deps.SourceCheck = validator.New()
	}
	return submit.New(deps)
}

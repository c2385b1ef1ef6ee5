// Package auth is the host user directory: who can log in, and which
// capabilities their role grants.
package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleAuthor        Role = "author"
	RoleContributor   Role = "contributor"
	RoleSubscriber    Role = "subscriber"
)

type Capability string

const (
	CapEditPosts     Capability = "edit_posts"
	CapManageOptions Capability = "manage_options"
)

var roleCaps = map[Role][]Capability{
	RoleAdministrator: {CapEditPosts, CapManageOptions},
	RoleEditor:        {CapEditPosts},
	RoleAuthor:        {CapEditPosts},
	RoleContributor:   {CapEditPosts},
	RoleSubscriber:    nil,
}

// User is one configured account.
type User struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Role         Role   `mapstructure:"role" yaml:"role"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash"`
}

// Directory looks users up by name.
type Directory struct {
	users map[string]User
}

func NewDirectory(users []User) (*Directory, error) {
	d := &Directory{users: make(map[string]User, len(users))}
	for _, u := range users {
		u.Name = strings.TrimSpace(u.Name)
		if u.Name == "" {
			return nil, fmt.Errorf("user without a name")
		}
		if _, ok := roleCaps[u.Role]; !ok {
			return nil, fmt.Errorf("user %s: unknown role %q", u.Name, u.Role)
		}
		if _, dup := d.users[u.Name]; dup {
			return nil, fmt.Errorf("duplicate user %s", u.Name)
		}
		d.users[u.Name] = u
	}
	return d, nil
}

// Authenticate checks a name/password pair against the stored bcrypt hash.
func (d *Directory) Authenticate(name, password string) (User, bool) {
	u, ok := d.users[name]
	if !ok || u.PasswordHash == "" {
		return User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, false
	}
	return u, true
}

// Can reports whether user holds capability.
func (d *Directory) Can(user string, capability Capability) bool {
	u, ok := d.users[user]
	if !ok {
		return false
	}
	for _, c := range roleCaps[u.Role] {
		if c == capability {
			return true
		}
	}
	return false
}

// CanEdit reports whether user may edit posts. Every post is treated alike.
func (d *Directory) CanEdit(user string, postID int64) bool {
	return d.Can(user, CapEditPosts)
}

// CanManageOptions reports whether user may change plugin settings.
func (d *Directory) CanManageOptions(user string) bool {
	return d.Can(user, CapManageOptions)
}

// HashPassword returns a bcrypt hash suitable for the users config.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

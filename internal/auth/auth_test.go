package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	return string(h)
}

func TestDirectory_Capabilities(t *testing.T) {
	d, err := NewDirectory([]User{
		{Name: "admin", Role: RoleAdministrator},
		{Name: "ed", Role: RoleEditor},
		{Name: "con", Role: RoleContributor},
		{Name: "sub", Role: RoleSubscriber},
	})
	if err != nil {
		t.Fatalf("NewDirectory failed: %v", err)
	}

	tests := []struct {
		user       string
		edit       bool
		manageOpts bool
	}{
		{"admin", true, true},
		{"ed", true, false},
		{"con", true, false},
		{"sub", false, false},
		{"ghost", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := d.CanEdit(tt.user, 1); got != tt.edit {
				t.Errorf("CanEdit = %v, want %v", got, tt.edit)
			}
			if got := d.CanManageOptions(tt.user); got != tt.manageOpts {
				t.Errorf("CanManageOptions = %v, want %v", got, tt.manageOpts)
			}
		})
	}
}

func TestNewDirectory_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		users []User
	}{
		{"empty name", []User{{Name: " ", Role: RoleEditor}}},
		{"unknown role", []User{{Name: "x", Role: "owner"}}},
		{"duplicate", []User{{Name: "x", Role: RoleEditor}, {Name: "x", Role: RoleAuthor}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDirectory(tt.users); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDirectory_Authenticate(t *testing.T) {
	d, err := NewDirectory([]User{
		{Name: "alice", Role: RoleEditor, PasswordHash: mustHash(t, "correct horse")},
		{Name: "nopass", Role: RoleEditor},
	})
	if err != nil {
		t.Fatalf("NewDirectory failed: %v", err)
	}

	if u, ok := d.Authenticate("alice", "correct horse"); !ok || u.Name != "alice" {
		t.Error("expected alice to authenticate")
	}
	if _, ok := d.Authenticate("alice", "wrong"); ok {
		t.Error("expected wrong password to fail")
	}
	if _, ok := d.Authenticate("nopass", ""); ok {
		t.Error("expected user without hash to fail")
	}
	if _, ok := d.Authenticate("ghost", "x"); ok {
		t.Error("expected unknown user to fail")
	}
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("pw")) != nil {
		t.Error("hash does not match password")
	}

	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

// Package identity authenticates operators against a fixed user directory and
// issues signed session tokens carrying their role.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Role gates mutations: admins write, viewers only read.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// CanWrite reports whether the role may run mutation operations.
func (r Role) CanWrite() bool { return r == RoleAdmin }

func (r Role) valid() bool { return r == RoleAdmin || r == RoleViewer }

// User is a directory entry.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Public strips the password hash.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// ErrInvalidCredentials covers both unknown emails and wrong passwords.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// MsgInvalidCredentials is the sign-in rejection shown to the operator.
const MsgInvalidCredentials = "Identifiants incorrects."

// Directory is an immutable set of users keyed by normalised email.
type Directory struct {
	byEmail map[string]User
	byID    map[string]User
	// dummy is compared against when the email is unknown so both failure
	// paths cost one bcrypt comparison.
	dummy []byte
}

// NewDirectory validates users and indexes them.
func NewDirectory(users []User) (*Directory, error) {
	d := &Directory{byEmail: make(map[string]User, len(users)), byID: make(map[string]User, len(users))}
	for _, u := range users {
		email := normaliseEmail(u.Email)
		switch {
		case u.ID == "" || email == "":
			return nil, fmt.Errorf("identity: user %q needs an id and an email", u.Name)
		case !u.Role.valid():
			return nil, fmt.Errorf("identity: user %s has unknown role %q", u.ID, u.Role)
		case u.PasswordHash == "":
			return nil, fmt.Errorf("identity: user %s has no password hash", u.ID)
		}
		if _, dup := d.byEmail[email]; dup {
			return nil, fmt.Errorf("identity: duplicate email %s", email)
		}
		if _, dup := d.byID[u.ID]; dup {
			return nil, fmt.Errorf("identity: duplicate id %s", u.ID)
		}
		d.byEmail[email] = u
		d.byID[u.ID] = u
		if d.dummy == nil {
			d.dummy = []byte(u.PasswordHash)
		}
	}
	return d, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate matches email case-insensitively after trimming and checks the
// password with bcrypt.
func (d *Directory) Authenticate(email, password string) (User, error) {
	u, ok := d.byEmail[normaliseEmail(email)]
	if !ok {
		if d.dummy != nil {
			_ = bcrypt.CompareHashAndPassword(d.dummy, []byte(password))
		}
		return User{}, ErrInvalidCredentials
	}
	if password == "" {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u.Public(), nil
}

// Lookup finds a user by id.
func (d *Directory) Lookup(id string) (User, bool) {
	u, ok := d.byID[id]
	return u.Public(), ok
}

// Len reports the number of users.
func (d *Directory) Len() int { return len(d.byID) }

// HashPassword hashes password with bcrypt at cost; cost <= 0 uses
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// demoAccounts are the accounts printed on the sign-in page.
var demoAccounts = []struct {
	user     User
	password string
}{
	{User{ID: "admin-ines", Name: "Inès (Admin)", Email: "admin1@tmf.local", Role: RoleAdmin}, "Admin#Stock1"},
	{User{ID: "admin-samir", Name: "Samir (Admin)", Email: "admin2@tmf.local", Role: RoleAdmin}, "Admin#Stock2"},
	{User{ID: "viewer-amel", Name: "Amel (Lecture)", Email: "viewer@tmf.local", Role: RoleViewer}, "Viewer#Stock"},
}

// DemoUsers returns the seeded demo accounts with freshly hashed passwords.
func DemoUsers(cost int) ([]User, error) {
	users := make([]User, 0, len(demoAccounts))
	for _, acc := range demoAccounts {
		hash, err := HashPassword(acc.password, cost)
		if err != nil {
			return nil, fmt.Errorf("hash demo password for %s: %w", acc.user.ID, err)
		}
		u := acc.user
		u.PasswordHash = hash
		users = append(users, u)
	}
	return users, nil
}

// LoadUsersFile reads a JSON array of users with bcrypt password hashes.
func LoadUsersFile(path string) ([]User, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode users file %s: %w", path, err)
	}
	return users, nil
}

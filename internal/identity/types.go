package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role names understood by the route gates. Roles are free-form strings in
// the store; these are the two the API cares about.
const (
	RoleReader = "Reader"
	RoleWriter = "Writer"
)

// User is an account row in the identity store.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// RequestContext carries the resolved caller identity through a request.
// Services receive it explicitly; a nil RequestContext means anonymous.
type RequestContext struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

// HasRole reports whether the caller holds the named role.
func (rc *RequestContext) HasRole(role string) bool {
	if rc == nil {
		return false
	}
	for _, r := range rc.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RegisterRequest for username/password registration. The username is an
// email address; roles are granted as supplied.
type RegisterRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// LoginRequest for username/password authentication.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

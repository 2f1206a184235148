package auth

import (
	"time"

	"github.com/google/uuid"
)

// Config drives authentication behavior.
type Config struct {
	SessionTTL        time.Duration
	MinPasswordLength int
	Password          PasswordParams
}

// Credential is a registered email/password-hash pair. Password always holds the hash.
type Credential struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Active   bool      `json:"active"`
}

// CreateCredential is the insert payload; the store assigns id and active.
type CreateCredential struct {
	Email    string
	Password string
}

// UpdateCredential replaces the mutable credential fields.
type UpdateCredential struct {
	Password string
	Active   bool
}

// CredentialKey selects exactly one credential.
type CredentialKey interface {
	isCredentialKey()
}

// CredentialByID looks a credential up by primary id.
type CredentialByID struct {
	ID uuid.UUID
}

// CredentialByEmail looks a credential up by its unique email.
type CredentialByEmail struct {
	Email string
}

func (CredentialByID) isCredentialKey()    {}
func (CredentialByEmail) isCredentialKey() {}

// CredentialFilter selects credentials by activity.
type CredentialFilter struct {
	Active bool
}

// Session is a time-bounded token issued after a successful sign-in.
type Session struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CredentialID uuid.UUID `json:"credentialId"`
	Active       bool      `json:"active"`
}

// CreateSession is the insert payload; the store assigns id, created_at and active.
type CreateSession struct {
	ExpiresAt    time.Time
	CredentialID uuid.UUID
}

// SessionKey selects exactly one session.
type SessionKey interface {
	isSessionKey()
}

// SessionByID looks a session up by primary id.
type SessionByID struct {
	ID uuid.UUID
}

// SessionByCredentialID looks up a session of the given credential.
type SessionByCredentialID struct {
	CredentialID uuid.UUID
}

func (SessionByID) isSessionKey()           {}
func (SessionByCredentialID) isSessionKey() {}

// SessionFilter selects every session of one credential.
type SessionFilter struct {
	CredentialID uuid.UUID
}

// SignUpRequest captures the registration payload.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInRequest captures sign-in details.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

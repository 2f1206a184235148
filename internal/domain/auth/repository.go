package auth

import "github.com/yanqian/auth-service/pkg/storage"

// CredentialRepository persists credentials for one engine with transaction handle Tx.
type CredentialRepository[Tx any] interface {
	storage.Repository[Tx, Credential, CreateCredential, CredentialKey, CredentialFilter]
	storage.Updater[Tx, Credential, UpdateCredential, CredentialKey]
}

// SessionRepository persists sessions. Sessions have no update semantics, so
// the contract carries no Update method.
type SessionRepository[Tx any] interface {
	storage.Repository[Tx, Session, CreateSession, SessionKey, SessionFilter]
}

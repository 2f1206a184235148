package sessionrepo

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/pkg/storage"
)

const entity = "session"

// lookup resolves a key variant into its column and id argument.
func lookup(key auth.SessionKey) (column string, id uuid.UUID, err error) {
	switch k := key.(type) {
	case auth.SessionByID:
		return "id", k.ID, nil
	case auth.SessionByCredentialID:
		return "credential_id", k.CredentialID, nil
	}
	return "", uuid.Nil, storage.New(storage.KindNotImplemented, fmt.Sprintf("session key %T", key), nil)
}

// latest picks the most recently created session, breaking ties on the highest
// id the same way the by-credential queries do. Lookups by credential may match
// several rows; the newest one represents the credential.
func latest(sessions []auth.Session) auth.Session {
	out := sessions[0]
	for _, s := range sessions[1:] {
		switch {
		case s.CreatedAt.After(out.CreatedAt):
			out = s
		case s.CreatedAt.Equal(out.CreatedAt) && bytes.Compare(s.ID[:], out.ID[:]) > 0:
			out = s
		}
	}
	return out
}

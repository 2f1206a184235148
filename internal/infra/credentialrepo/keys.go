package credentialrepo

import (
	"fmt"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/pkg/storage"
)

const entity = "credential"

// lookup resolves a key variant into its column and argument.
func lookup(key auth.CredentialKey) (column string, arg any, err error) {
	switch k := key.(type) {
	case auth.CredentialByID:
		return "id", k.ID, nil
	case auth.CredentialByEmail:
		return "email", k.Email, nil
	}
	return "", nil, storage.New(storage.KindNotImplemented, fmt.Sprintf("credential key %T", key), nil)
}

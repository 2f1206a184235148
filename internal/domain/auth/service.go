package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/auth-service/pkg/errors"
	"github.com/yanqian/auth-service/pkg/storage"
	"github.com/yanqian/auth-service/pkg/util"
)

// Service exposes the credential and session lifecycle.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (Credential, error)
	SignIn(ctx context.Context, req SignInRequest) (Session, error)
	SignOut(ctx context.Context, sessionID string) (Session, error)
	Deactivate(ctx context.Context, credentialID uuid.UUID) (Credential, error)
}

type service[Tx any] struct {
	cfg         Config
	runner      storage.Runner[Tx]
	credentials CredentialRepository[Tx]
	sessions    SessionRepository[Tx]
	now         util.Clock
	logger      *slog.Logger
}

// NewService constructs a Service bound to one backend engine.
func NewService[Tx any](cfg Config, runner storage.Runner[Tx], credentials CredentialRepository[Tx], sessions SessionRepository[Tx], logger *slog.Logger) Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = defaultMinPasswordLength
	}
	cfg.Password = cfg.Password.withDefaults()
	return &service[Tx]{
		cfg:         cfg,
		runner:      runner,
		credentials: credentials,
		sessions:    sessions,
		now:         util.NowUTC,
		logger:      logger.With("component", "auth.service"),
	}
}

func (s *service[Tx]) SignUp(ctx context.Context, req SignUpRequest) (Credential, error) {
	if err := s.validate(req.Email, req.Password); err != nil {
		return Credential{}, err
	}
	credential, err := storage.InTx(ctx, s.runner, func(ctx context.Context, tx Tx) (Credential, error) {
		exists, err := s.credentials.Exists(ctx, tx, CredentialByEmail{Email: req.Email})
		if err != nil {
			return Credential{}, err
		}
		if exists {
			s.logger.Debug("sign up rejected", "reason", "email registered")
			return Credential{}, unauthorized()
		}
		hash, err := HashPassword(s.cfg.Password, req.Password)
		if err != nil {
			return Credential{}, apperrors.Wrap(apperrors.CodeInternal, "failed to hash password", err)
		}
		return s.credentials.Insert(ctx, tx, CreateCredential{Email: req.Email, Password: hash})
	})
	if err != nil {
		return Credential{}, s.internal("sign up", err)
	}
	return credential, nil
}

func (s *service[Tx]) SignIn(ctx context.Context, req SignInRequest) (Session, error) {
	if err := s.validate(req.Email, req.Password); err != nil {
		return Session{}, err
	}
	session, err := storage.InTx(ctx, s.runner, func(ctx context.Context, tx Tx) (Session, error) {
		credential, found, err := s.credentials.TryGet(ctx, tx, CredentialByEmail{Email: req.Email})
		if err != nil {
			return Session{}, err
		}
		if !found {
			s.logger.Debug("sign in rejected", "reason", "unknown email")
			return Session{}, unauthorized()
		}
		if !credential.Active {
			s.logger.Debug("sign in rejected", "reason", "inactive credential")
			return Session{}, unauthorized()
		}
		ok, err := VerifyPassword(credential.Password, req.Password)
		if err != nil {
			return Session{}, apperrors.Wrap(apperrors.CodeInternal, "failed to verify password", err)
		}
		if !ok {
			s.logger.Debug("sign in rejected", "reason", "password mismatch")
			return Session{}, unauthorized()
		}
		return s.sessions.Insert(ctx, tx, CreateSession{
			ExpiresAt:    s.now().Add(s.cfg.SessionTTL),
			CredentialID: credential.ID,
		})
	})
	if err != nil {
		return Session{}, s.internal("sign in", err)
	}
	return session, nil
}

// SignOut deactivates an active session. Unknown, malformed or already
// inactive session ids are all reported as unauthorized.
func (s *service[Tx]) SignOut(ctx context.Context, sessionID string) (Session, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return Session{}, unauthorized()
	}
	session, err := storage.InTx(ctx, s.runner, func(ctx context.Context, tx Tx) (Session, error) {
		current, found, err := s.sessions.TryGet(ctx, tx, SessionByID{ID: id})
		if err != nil {
			return Session{}, err
		}
		if !found || !current.Active {
			return Session{}, unauthorized()
		}
		return s.sessions.Delete(ctx, tx, SessionByID{ID: id})
	})
	if err != nil {
		return Session{}, s.internal("sign out", err)
	}
	return session, nil
}

// Deactivate soft-deletes a credential. Sessions already issued for it are left
// untouched; sign-in re-checks the credential instead.
func (s *service[Tx]) Deactivate(ctx context.Context, credentialID uuid.UUID) (Credential, error) {
	credential, err := storage.InTx(ctx, s.runner, func(ctx context.Context, tx Tx) (Credential, error) {
		exists, err := s.credentials.Exists(ctx, tx, CredentialByID{ID: credentialID})
		if err != nil {
			return Credential{}, err
		}
		if !exists {
			return Credential{}, apperrors.Wrap(apperrors.CodeNotFound, "credential not found", nil)
		}
		return s.credentials.Delete(ctx, tx, CredentialByID{ID: credentialID})
	})
	if err != nil {
		return Credential{}, s.internal("deactivate", err)
	}
	return credential, nil
}

func (s *service[Tx]) validate(email, password string) error {
	if !IsValidEmail(email) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, msgInvalidEmail, nil)
	}
	if msg := passwordTooShort(password, s.cfg.MinPasswordLength); msg != "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, msg, nil)
	}
	return nil
}

// internal passes domain errors through and turns storage failures into a
// generic internal error after logging the classified kind.
func (s *service[Tx]) internal(op string, err error) error {
	if code := apperrors.CodeOf(err); code != "" {
		if code == apperrors.CodeInternal {
			s.logger.Error(op+" failed", "error", err)
		}
		return err
	}
	s.logger.Error(op+" failed", "kind", storage.KindOf(err).String(), "error", err)
	return apperrors.Wrap(apperrors.CodeInternal, "Internal Server Error", err)
}

func unauthorized() error {
	return apperrors.Wrap(apperrors.CodeUnauthorized, msgUnauthorized, nil)
}

// Package services contains server-side business logic. This file implements
// UserService: signup, signin, bearer and session-cookie authentication, and
// session info for the signed-in user.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PasswordHasher is satisfied by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	Burn(plaintext string)
}

// TokenIssuer is satisfied by *auth.TokenIssuer.
type TokenIssuer interface {
	Issue(subjectID string, ttl time.Duration) (string, auth.Claims, error)
	Verify(token string) (auth.Claims, error)
}

// ClientInfo describes the caller of signup or signin; it is stored on the
// session record.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// AuthResult is returned by SignUp and SignIn. Token is the bearer token;
// SessionToken is the opaque value for the session cookie.
type AuthResult struct {
	User             *models.User
	Token            string
	ExpiresAt        time.Time
	SessionToken     string
	SessionExpiresAt time.Time
}

// SessionInfo describes the current authentication state of a user.
type SessionInfo struct {
	User      *models.User
	ExpiresAt time.Time
	Active    bool
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
	limiter     ratelimit.Limiter
	tokenTTL    time.Duration

	now   func() time.Time
	newID func() string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer,
	limiter ratelimit.Limiter, tokenTTL time.Duration) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		limiter:     limiter,
		tokenTTL:    tokenTTL,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// SignUp creates an account and signs it in. A taken email yields
// common.ErrorAlreadyExists.
func (s *UserService) SignUp(ctx context.Context, email, password string, name *string, client ClientInfo) (*AuthResult, error) {
	email = common.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.CheckPasswordPolicy(password); err != nil {
		return nil, err
	}
	name = normalizeOptional(name)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*AuthResult, error) {
		now := s.now()
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			ID:           s.newID(),
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return nil, fmt.Errorf("%w: email already registered", common.ErrorAlreadyExists)
			}
			return nil, fmt.Errorf("error creating user: %w", err)
		}
		return s.startSession(ctx, tx, user, client)
	})
}

// SignIn checks credentials for email. Unknown emails and wrong passwords
// both yield common.ErrorUnauthorized. Throttled attempts yield a
// *ratelimit.LimitError wrapping common.ErrRateLimited.
func (s *UserService) SignIn(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = common.NormalizeEmail(email)

	if err := s.limiter.Check(ctx, email); err != nil {
		if errors.Is(err, common.ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("error checking rate limit: %w", err)
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*AuthResult, error) {
		users := s.repomanager.Users(tx)

		user, err := users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.hasher.Burn(password)
				return nil, common.ErrorUnauthorized
			}
			return nil, fmt.Errorf("error looking up user: %w", err)
		}
		if !s.hasher.Verify(password, user.PasswordHash) {
			return nil, common.ErrorUnauthorized
		}

		if err := s.limiter.Clear(ctx, email); err != nil {
			return nil, fmt.Errorf("error clearing rate limit: %w", err)
		}

		now := s.now()
		if err := users.UpdateLastSignin(ctx, user.ID, now); err != nil {
			return nil, fmt.Errorf("error updating last signin: %w", err)
		}
		user.LastSigninAt = &now

		return s.startSession(ctx, tx, user, client)
	})
}

// Authenticate verifies a bearer token and returns its subject.
func (s *UserService) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.SubjectID, nil
}

// ResolveSession maps a session cookie value to its user id. Only the part
// before the first "." is the token. Unknown tokens yield
// common.ErrorUnauthorized, expired ones common.ErrSessionExpired. The
// session record is not modified.
func (s *UserService) ResolveSession(ctx context.Context, cookieValue string) (string, error) {
	token, _, _ := strings.Cut(cookieValue, ".")
	if token == "" {
		return "", common.ErrorUnauthorized
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		session, err := s.repomanager.Sessions(tx).GetByTokenHash(ctx, common.HashToken(token))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return "", common.ErrorUnauthorized
			}
			return "", fmt.Errorf("error looking up session: %w", err)
		}
		if session.Expired(s.now()) {
			return "", common.ErrSessionExpired
		}
		return session.UserID, nil
	})
}

// SessionInfo reports the user behind subjectID and when its authentication
// expires: the last signin plus the token lifetime, or now plus the token
// lifetime for a user that never signed in.
func (s *UserService) SessionInfo(ctx context.Context, subjectID string) (*SessionInfo, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*SessionInfo, error) {
		user, err := s.repomanager.Users(tx).GetByID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorUnauthorized
			}
			return nil, fmt.Errorf("error looking up user: %w", err)
		}

		now := s.now()
		expires := now.Add(s.tokenTTL)
		if user.LastSigninAt != nil {
			expires = user.LastSigninAt.Add(s.tokenTTL)
		}
		return &SessionInfo{User: user, ExpiresAt: expires, Active: expires.After(now)}, nil
	})
}

// PurgeExpiredSessions deletes session records that expired before now.
func (s *UserService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error purging sessions: %w", err)
	}
	return n, nil
}

func (s *UserService) startSession(ctx context.Context, tx dbx.DBTX, user *models.User, client ClientInfo) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	sessionToken, err := common.MakeRandHexString(common.SessionTokenSize)
	if err != nil {
		return nil, fmt.Errorf("error generating session token: %w", err)
	}

	now := s.now()
	session := &models.Session{
		ID:             s.newID(),
		UserID:         user.ID,
		TokenHash:      common.HashToken(sessionToken),
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.tokenTTL),
		LastActivityAt: now,
		UserAgent:      optional(client.UserAgent),
		IPAddress:      optional(client.IPAddress),
	}
	if err := s.repomanager.Sessions(tx).Create(ctx, session); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return &AuthResult{
		User:             user,
		Token:            token,
		ExpiresAt:        claims.ExpiresAt,
		SessionToken:     sessionToken,
		SessionExpiresAt: session.ExpiresAt,
	}, nil
}

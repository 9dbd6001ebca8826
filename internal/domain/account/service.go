package account

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/dentalcare/dentalcare/internal/domain/chat"
	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/auth"
	"github.com/dentalcare/dentalcare/internal/platform/db"
)

// Sessions is the part of the chat service that account depends on.
type Sessions interface {
	CreateSession(ctx context.Context, userID int64, firstName, email string) (*chat.Session, error)
	SessionForUser(ctx context.Context, userID int64) (*chat.Session, error)
}

type TokenIssuer interface {
	Issue(claims auth.Claims, ttl time.Duration) (string, error)
}

type SigninRecorder interface {
	RecordSignin(success bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordSignin(bool) {}

type Service struct {
	users    UserRepository
	sessions Sessions
	tx       db.Transactor
	hasher   *auth.PasswordHasher
	tokens   TokenIssuer
	ttl      time.Duration
	recorder SigninRecorder
	logger   zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(users UserRepository, sessions Sessions, tx db.Transactor, hasher *auth.PasswordHasher,
	tokens TokenIssuer, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tx:       tx,
		hasher:   hasher,
		tokens:   tokens,
		ttl:      ttl,
		recorder: nopRecorder{},
		logger:   logger.With().Str("component", "account").Logger(),
	}
}

func (s *Service) SetRecorder(r SigninRecorder) {
	if r != nil {
		s.recorder = r
	}
}

// Signup creates the user and its chat session in one transaction.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*PublicUser, error) {
	in.Email = strings.TrimSpace(in.Email)

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &User{
		Email:        in.Email,
		PasswordHash: digest,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		DateOfBirth:  in.DateOfBirth,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.GetByEmail(ctx, u.Email)
		if err == nil && existing != nil {
			return apperr.DuplicateEmail(nil)
		}
		if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return err
		}

		// The unique constraint still decides concurrent signups.
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		if _, err := s.sessions.CreateSession(ctx, u.ID, u.FirstName, u.Email); err != nil {
			return fmt.Errorf("create chat session: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindDuplicateEmail {
			s.logger.Info().Str("email", u.Email).Msg("signup rejected: email exists")
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", u.Email).Msg("signup failed")
		return nil, apperr.Internal(err)
	}

	s.logger.Info().Str("email", u.Email).Int64("user_id", u.ID).Msg("user created")
	pub := u.Public()
	return &pub, nil
}

// Signin checks credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Signin(ctx context.Context, email, password string) (*TokenResponse, error) {
	email = strings.TrimSpace(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			s.logger.Error().Err(err).Str("email", email).Msg("signin lookup failed")
			return nil, apperr.Internal(err)
		}
		// Spend the same bcrypt work as a real comparison.
		s.hasher.Verify(password, s.dummyDigest())
		s.recorder.RecordSignin(false)
		return nil, apperr.AuthenticationFailure()
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		s.recorder.RecordSignin(false)
		s.logger.Info().Str("email", email).Msg("signin rejected")
		return nil, apperr.AuthenticationFailure()
	}

	if s.hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u, password)
	}

	sess, err := s.sessions.SessionForUser(ctx, u.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("user has no chat session")
		return nil, apperr.Internal(err)
	}

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.Email},
		UserID:           u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		ChatSessionID:    sess.ID,
	}
	token, err := s.tokens.Issue(claims, s.ttl)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.recorder.RecordSignin(true)
	s.logger.Info().Int64("user_id", u.ID).Msg("signin ok")
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// rehash upgrades a digest produced at a lower cost. Failure only costs the
// upgrade, never the signin.
func (s *Service) rehash(ctx context.Context, u *User, password string) {
	digest, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, u.ID, digest)
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", u.ID).Msg("password rehash failed")
		return
	}
	u.PasswordHash = digest
	s.logger.Info().Int64("user_id", u.ID).Msg("password rehashed")
}

func (s *Service) dummyDigest() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.logger.Error().Err(err).Msg("dummy hash")
		}
		s.dummyHash = d
	})
	return s.dummyHash
}

// Package identity handles registration and login. Accounts are keyed by
// username and guarded by a 6-digit PIN stored as a bcrypt hash.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	"golang.org/x/crypto/bcrypt"

	"lootledger/internal/core"
	"lootledger/internal/log"
	"lootledger/internal/remote"
	"lootledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or pin")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserLimitReached   = errors.New("user limit reached")
	// ErrAvailabilityUnknown means the remote availability check could not
	// complete. Registration treats this as taken; login ignores it.
	ErrAvailabilityUnknown = errors.New("could not verify username availability")
)

type Config struct {
	JWTSecret string
	JWTExpiry time.Duration
	MaxUsers  int
	CacheTTL  time.Duration
}

// Service implements registration and login on top of the local repository,
// with an optional remote store consulted for global username uniqueness.
type Service struct {
	repo      *storage.Repository
	remote    remote.Store
	cache     *freecache.Cache
	cacheTTL  int
	jwtSecret string
	jwtExpiry time.Duration
	maxUsers  int
	logger    *log.Logger
	now       func() time.Time
}

// NewService creates the identity service. remoteStore may be nil when no
// remote backend is configured.
func NewService(repo *storage.Repository, remoteStore remote.Store, cfg Config, logger *log.Logger) *Service {
	ttl := int(cfg.CacheTTL.Seconds())
	if ttl <= 0 {
		ttl = 60
	}
	return &Service{
		repo:      repo,
		remote:    remoteStore,
		cache:     freecache.NewCache(1024 * 1024),
		cacheTTL:  ttl,
		jwtSecret: cfg.JWTSecret,
		jwtExpiry: cfg.JWTExpiry,
		maxUsers:  cfg.MaxUsers,
		logger:    logger.WithComponent(log.ComponentIdentity),
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates a new account. Username uniqueness is enforced locally
// and, when a remote store is configured, globally. A remote check that
// cannot complete fails the registration rather than risking a collision.
func (s *Service) Register(ctx context.Context, username, pin string) (string, *core.UserRecord, error) {
	if err := core.ValidateUsername(username); err != nil {
		return "", nil, err
	}
	if err := core.ValidatePIN(pin); err != nil {
		return "", nil, err
	}

	count, err := s.repo.UserCount(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("count users: %w", err)
	}
	if count >= s.maxUsers {
		return "", nil, ErrUserLimitReached
	}

	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("check local username: %w", err)
	}
	if exists {
		return "", nil, ErrUsernameTaken
	}

	if s.remote != nil {
		available, err := s.checkRemoteAvailability(ctx, username)
		if err != nil {
			s.logger.WarnContext(ctx, "remote availability check failed, rejecting registration",
				log.FieldUsername, username,
				log.FieldError, err,
			)
			return "", nil, ErrAvailabilityUnknown
		}
		if !available {
			return "", nil, ErrUsernameTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash pin: %w", err)
	}

	rec := core.NewUserRecord(username, s.now())
	if err := s.repo.CreateUser(ctx, username, string(hash), rec); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return "", nil, ErrUsernameTaken
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(username, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		log.FieldUsername, username,
		log.FieldOperation, log.OpRegister,
	)
	return token, rec, nil
}

// Login authenticates a username and PIN. The last login time is updated
// best-effort; a failure there does not block the login.
func (s *Service) Login(ctx context.Context, username, pin string) (string, *core.UserRecord, error) {
	pinHash, rec, err := s.repo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	rec.LastLogin = s.now()
	if err := s.repo.SaveRecord(ctx, username, rec); err != nil {
		s.logger.WarnContext(ctx, "could not persist last login",
			log.FieldUsername, username,
			log.FieldError, err,
		)
	}

	token, err := GenerateToken(username, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		log.FieldUsername, username,
		log.FieldOperation, log.OpLogin,
	)
	return token, rec, nil
}

// CheckAvailability reports whether a username can still be registered,
// consulting the local repository and, when configured, the remote store.
// A remote failure yields ErrAvailabilityUnknown so callers can distinguish
// "taken" from "could not tell".
func (s *Service) CheckAvailability(ctx context.Context, username string) (bool, error) {
	if err := core.ValidateUsername(username); err != nil {
		return false, err
	}

	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check local username: %w", err)
	}
	if exists {
		return false, nil
	}

	if s.remote != nil {
		available, err := s.checkRemoteAvailability(ctx, username)
		if err != nil {
			return false, ErrAvailabilityUnknown
		}
		return available, nil
	}
	return true, nil
}

// checkRemoteAvailability asks the remote store whether a username is free,
// caching answers briefly so repeated signup attempts don't hammer it.
func (s *Service) checkRemoteAvailability(ctx context.Context, username string) (bool, error) {
	key := []byte("avail:" + username)
	if cached, err := s.cache.Get(key); err == nil && len(cached) == 1 {
		return cached[0] == '1', nil
	}

	available, err := s.remote.CheckUsernameAvailable(ctx, username)
	if err != nil {
		return false, err
	}

	val := []byte{'0'}
	if available {
		val[0] = '1'
	}
	_ = s.cache.Set(key, val, s.cacheTTL)
	return available, nil
}

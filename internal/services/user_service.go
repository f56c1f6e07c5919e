package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cambistas-backend/internal/auth"
	"cambistas-backend/internal/repositories"

	"go.uber.org/zap"
)

// CredentialStore persists the username to password table
type CredentialStore interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, users map[string]string) error
}

type UserServiceOptions struct {
	// HashPasswords stores bcrypt hashes instead of the plaintext table
	HashPasswords   bool
	DefaultUsername string
	DefaultPassword string
}

// UserService is the credential store in front of the persisted table.
// Passwords are kept as given unless hashing is switched on; tables written
// in either mode can be read back in the other.
type UserService struct {
	mu     sync.RWMutex
	users  map[string]string
	store  CredentialStore
	opts   UserServiceOptions
	logger *zap.Logger
}

func NewUserService(store CredentialStore, opts UserServiceOptions, logger *zap.Logger) *UserService {
	return &UserService{
		users:  make(map[string]string),
		store:  store,
		opts:   opts,
		logger: logger.Named("users"),
	}
}

// Load reads the stored table. When nothing was stored yet the default
// account is seeded.
func (s *UserService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.Load(ctx)
	if err == nil {
		s.users = users
		s.logger.Info("credential table loaded", zap.Int("users", len(users)))
		return nil
	}
	if !errors.Is(err, repositories.ErrBlobNotFound) {
		return fmt.Errorf("load credentials: %w", err)
	}

	s.users = make(map[string]string)
	username := strings.TrimSpace(s.opts.DefaultUsername)
	if username == "" || s.opts.DefaultPassword == "" {
		return nil
	}
	stored, err := s.encode(s.opts.DefaultPassword)
	if err != nil {
		return err
	}
	s.users[username] = stored
	if err := s.store.Save(ctx, s.users); err != nil {
		s.logger.Warn("default account not persisted", zap.Error(err))
	}
	s.logger.Info("seeded default account", zap.String("username", username))
	return nil
}

func (s *UserService) encode(password string) (string, error) {
	if !s.opts.HashPasswords {
		return password, nil
	}
	return auth.HashPassword(password)
}

func normalize(username, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return "", "", ErrMissingCredential
	}
	return username, password, nil
}

// Register adds a new account. The table is restored if it cannot be saved.
func (s *UserService) Register(ctx context.Context, username, password string) error {
	username, password, err := normalize(username, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return ErrDuplicateCredential
	}
	stored, err := s.encode(password)
	if err != nil {
		return err
	}

	s.users[username] = stored
	if err := s.store.Save(ctx, s.users); err != nil {
		delete(s.users, username)
		s.logger.Warn("registration not saved", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistenceWrite, err)
	}
	s.logger.Info("account registered", zap.String("username", username))
	return nil
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) error {
	username, password, err := normalize(username, password)
	if err != nil {
		return err
	}

	s.mu.RLock()
	stored, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return ErrInvalidCredential
	}

	if auth.IsHash(stored) {
		if !auth.VerifyPassword(stored, password) {
			return ErrInvalidCredential
		}
		return nil
	}
	if stored != password {
		return ErrInvalidCredential
	}
	return nil
}

// Exists reports whether username is registered; used to reject tokens of
// removed accounts.
func (s *UserService) Exists(_ context.Context, username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok
}

// Package credentials is the user registry: it bootstraps the admin account,
// creates client users and verifies passwords against bcrypt hashes.
package credentials

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"input-portal/internal/models"
)

type Store struct {
	backend Backend
	hasher  Hasher
	logger  *zap.Logger
}

type Option func(*Store)

func WithHasher(h Hasher) Option {
	return func(s *Store) { s.hasher = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, hasher: BcryptHasher{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadRegistry returns the persisted records in insertion order.
func (s *Store) LoadRegistry(ctx context.Context) ([]models.User, error) {
	return s.backend.Load(ctx)
}

// EnsureAdminBootstrap appends the admin record when no user is both named
// admin and has the admin role. It reports whether a record was added.
func (s *Store) EnsureAdminBootstrap(ctx context.Context) (bool, error) {
	_, created, err := s.registry(ctx)
	return created, err
}

// registry loads the records and heals a missing admin account on the way.
func (s *Store) registry(ctx context.Context) ([]models.User, bool, error) {
	users, err := s.backend.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, u := range users {
		if u.IsBootstrapAdmin() {
			return users, false, nil
		}
	}
	users = append(users, models.User{
		Company:  models.AdminCompany,
		Username: models.AdminUsername,
		Role:     models.RoleAdmin,
	})
	if err := s.backend.Save(ctx, users); err != nil {
		return nil, false, err
	}
	s.logger.Info("admin account bootstrapped", zap.String("username", models.AdminUsername))
	return users, true, nil
}

// AdminPasswordSet reports whether the bootstrap admin can log in yet.
func (s *Store) AdminPasswordSet(ctx context.Context) (bool, error) {
	users, _, err := s.registry(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.IsBootstrapAdmin() {
			return u.HasPassword(), nil
		}
	}
	return false, nil
}

// Authenticate checks the password of the first record named username.
func (s *Store) Authenticate(ctx context.Context, username, password string) (models.Identity, error) {
	users, _, err := s.registry(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	i := indexOf(users, username, "")
	if i < 0 {
		return models.Identity{}, ErrUserNotFound
	}
	u := users[i]
	if !u.HasPassword() {
		return models.Identity{}, ErrPasswordUnset
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.logger.Debug("password mismatch", zap.String("username", username))
		return models.Identity{}, ErrInvalidCredentials
	}
	return models.Identity{Username: u.Username, Role: u.Role, Company: u.Company}, nil
}

// SetPassword replaces the hash of the first record matching username and,
// when role is not empty, role.
func (s *Store) SetPassword(ctx context.Context, username string, role models.UserRole, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}
	users, _, err := s.registry(ctx)
	if err != nil {
		return err
	}
	i := indexOf(users, username, role)
	if i < 0 {
		return ErrUserNotFound
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	users[i].PasswordHash = hash
	if err := s.backend.Save(ctx, users); err != nil {
		return err
	}
	s.logger.Info("password updated", zap.String("username", username))
	return nil
}

// CreateClientUser appends a client record. Company and username are trimmed.
// Field and password checks run before the registry is read, so a rejected
// call leaves it untouched.
func (s *Store) CreateClientUser(ctx context.Context, company, username, password string) (models.User, error) {
	company = strings.TrimSpace(company)
	username = strings.TrimSpace(username)
	if company == "" || username == "" {
		return models.User{}, ErrMissingField
	}
	if err := checkPassword(password); err != nil {
		return models.User{}, err
	}
	users, _, err := s.registry(ctx)
	if err != nil {
		return models.User{}, err
	}
	if indexOf(users, username, "") >= 0 {
		return models.User{}, ErrDuplicateUsername
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{Company: company, Username: username, PasswordHash: hash, Role: models.RoleClient}
	users = append(users, u)
	if err := s.backend.Save(ctx, users); err != nil {
		return models.User{}, err
	}
	s.logger.Info("client user created", zap.String("username", username), zap.String("company", company))
	return u, nil
}

// ListUsers returns every record with the password hash blanked.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users, _, err := s.registry(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, len(users))
	for i, u := range users {
		u.PasswordHash = ""
		out[i] = u
	}
	return out, nil
}

// Companies lists the distinct client companies, sorted.
func (s *Store) Companies(ctx context.Context) ([]string, error) {
	users, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, u := range users {
		c := strings.TrimSpace(u.Company)
		if c == "" || c == models.AdminCompany {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// CheckConfirmation validates a password against its confirmation field.
func CheckConfirmation(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return checkPassword(password)
}

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func indexOf(users []models.User, username string, role models.UserRole) int {
	for i, u := range users {
		if u.Username == username && (role == "" || u.Role == role) {
			return i
		}
	}
	return -1
}

// Package auth is the credential store: it registers identities, checks
// secrets and records which identity holds the current session.
//
// Secrets are never kept. Each record stores a random salt and a
// PBKDF2-SHA256 derivation of the secret.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

var (
	ErrAlreadyExists      = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmptyUsername = errors.New("empty username")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrEmptySecret   = errors.New("empty secret")
)

// record is the persisted form of one registration.
type record struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	SecretHash string `json:"secretHash"`
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
}

func (r record) identity() core.Identity {
	return core.Identity{ID: r.ID, Username: r.Username, Email: r.Email}
}

func (r record) matches(who string) bool {
	return r.Username == who || r.Email == who
}

// CredentialStore keeps the ordered credential record set and the session
// marker in a store.Store.
type CredentialStore struct {
	store  store.Store
	hasher hasher
	newID  func() string
	logger *log.Logger
}

type Option func(*CredentialStore)

// WithIterations sets the PBKDF2 work factor for new registrations. Existing
// records keep the count they were created with.
func WithIterations(n int) Option {
	return func(s *CredentialStore) {
		if n > 0 {
			s.hasher.iterations = n
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *CredentialStore) {
		s.logger = l.WithComponent(log.ComponentAuth)
	}
}

// WithIDGenerator overrides how identity ids are minted.
func WithIDGenerator(f func() string) Option {
	return func(s *CredentialStore) {
		s.newID = f
	}
}

func NewCredentialStore(st store.Store, opts ...Option) *CredentialStore {
	s := &CredentialStore{
		store:  st,
		hasher: hasher{iterations: DefaultIterations},
		newID:  uuid.NewString,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an identity and makes it the current session.
//
// Username and email must each be unused by every existing record. The
// comparison is exact and case sensitive.
func (s *CredentialStore) Register(ctx context.Context, username, email, secret string) (core.Identity, error) {
	if err := validateRegistration(username, email, secret); err != nil {
		return core.Identity{}, err
	}

	records, err := s.records(ctx)
	if err != nil {
		return core.Identity{}, err
	}
	for _, r := range records {
		if r.Username == username || r.Email == email {
			s.logger.WarnContext(ctx, "Registration rejected",
				log.NewFields().
					WithOperation(log.OpRegister).
					WithError(ErrAlreadyExists, log.ErrorTypeConflict).
					ToSlice()...)
			return core.Identity{}, ErrAlreadyExists
		}
	}

	salt, key, err := s.hasher.hash(secret)
	if err != nil {
		return core.Identity{}, fmt.Errorf("register: %w", err)
	}
	rec := record{
		ID:         s.newID(),
		Username:   username,
		Email:      email,
		SecretHash: key,
		Salt:       salt,
		Iterations: s.hasher.iterations,
	}
	if err := s.saveRecords(ctx, append(records, rec)); err != nil {
		return core.Identity{}, fmt.Errorf("register: %w", err)
	}

	id := rec.identity()
	s.logger.InfoContext(ctx, "Identity registered",
		log.NewFields().
			WithOperation(log.OpRegister).
			WithIdentity(id.ID).
			ToSlice()...)

	if err := s.setSession(ctx, id); err != nil {
		return id, fmt.Errorf("register: %w", err)
	}
	return id, nil
}

// Authenticate checks a secret against the single record whose username or
// email equals usernameOrEmail, then records the session. Every failure is
// ErrInvalidCredentials, whatever the cause.
func (s *CredentialStore) Authenticate(ctx context.Context, usernameOrEmail, secret string) (core.Identity, error) {
	records, err := s.records(ctx)
	if err != nil {
		return core.Identity{}, err
	}

	var found []record
	for _, r := range records {
		if r.matches(usernameOrEmail) {
			found = append(found, r)
		}
	}

	if len(found) != 1 || usernameOrEmail == "" {
		// Same cost as a real check.
		_ = verify(secret, encode(make([]byte, SaltLength)), encode(make([]byte, KeyLength)), s.hasher.iterations)
		s.rejected(ctx)
		return core.Identity{}, ErrInvalidCredentials
	}

	rec := found[0]
	if !verify(secret, rec.Salt, rec.SecretHash, rec.Iterations) {
		s.rejected(ctx)
		return core.Identity{}, ErrInvalidCredentials
	}

	id := rec.identity()
	if err := s.setSession(ctx, id); err != nil {
		return id, fmt.Errorf("authenticate: %w", err)
	}
	s.logger.InfoContext(ctx, "Authenticated",
		log.NewFields().
			WithOperation(log.OpAuthenticate).
			WithIdentity(id.ID).
			ToSlice()...)
	return id, nil
}

// CurrentSession returns the identity recorded by the last successful
// register or authenticate, if the session has not been ended.
func (s *CredentialStore) CurrentSession(ctx context.Context) (core.Identity, bool, error) {
	raw, err := s.store.Get(ctx, store.KeySession)
	if errors.Is(err, store.ErrNotFound) {
		return core.Identity{}, false, nil
	}
	if err != nil {
		return core.Identity{}, false, store.Wrap("read", store.KeySession, err)
	}
	var id core.Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.ID == "" {
		return core.Identity{}, false, store.Wrap("decode", store.KeySession, fmt.Errorf("%w: session", store.ErrCorrupt))
	}
	return id, true, nil
}

// EndSession clears the session marker. Credentials and ledgers stay.
func (s *CredentialStore) EndSession(ctx context.Context) error {
	if err := s.store.Remove(ctx, store.KeySession); err != nil {
		return store.Wrap("remove", store.KeySession, err)
	}
	s.logger.InfoContext(ctx, "Session ended", log.FieldOperation, log.OpLogout)
	return nil
}

// Identities lists registered identities in registration order.
func (s *CredentialStore) Identities(ctx context.Context) ([]core.Identity, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Identity, 0, len(records))
	for _, r := range records {
		out = append(out, r.identity())
	}
	return out, nil
}

func (s *CredentialStore) rejected(ctx context.Context) {
	s.logger.WarnContext(ctx, "Authentication failed",
		log.NewFields().
			WithOperation(log.OpAuthenticate).
			WithError(ErrInvalidCredentials, log.ErrorTypeAuth).
			ToSlice()...)
}

func (s *CredentialStore) records(ctx context.Context) ([]record, error) {
	raw, err := s.store.Get(ctx, store.KeyCredentials)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Wrap("read", store.KeyCredentials, err)
	}
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, store.Wrap("decode", store.KeyCredentials, fmt.Errorf("%w: %w", store.ErrCorrupt, err))
	}
	return records, nil
}

func (s *CredentialStore) saveRecords(ctx context.Context, records []record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	return store.Wrap("write", store.KeyCredentials, s.store.Set(ctx, store.KeyCredentials, raw))
}

func (s *CredentialStore) setSession(ctx context.Context, id core.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return store.Wrap("write", store.KeySession, s.store.Set(ctx, store.KeySession, raw))
}

func validateRegistration(username, email, secret string) error {
	if strings.TrimSpace(username) == "" {
		return core.Invalid(ErrEmptyUsername)
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return core.Invalid(ErrInvalidEmail)
	}
	if secret == "" {
		return core.Invalid(ErrEmptySecret)
	}
	return nil
}

// Package session binds the credential store to the ledger engine. A
// session is Anonymous until a registration or login succeeds and the
// identity's ledger is loaded; it is then Active until logout.
package session

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Active
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrSessionActive = errors.New("a session is already active; log out first")
	ErrNotActive     = errors.New("no active session")
)

type Credentials interface {
	Register(ctx context.Context, username, email, secret string) (core.Identity, error)
	Authenticate(ctx context.Context, usernameOrEmail, secret string) (core.Identity, error)
	CurrentSession(ctx context.Context) (core.Identity, bool, error)
	EndSession(ctx context.Context) error
}

type Ledgers interface {
	Load(ctx context.Context, identity core.Identity) (core.Ledger, error)
	Unload()
}

type Controller struct {
	credentials Credentials
	ledgers     Ledgers
	logger      *log.Logger

	state    State
	identity core.Identity
}

func NewController(credentials Credentials, ledgers Ledgers, logger *log.Logger) *Controller {
	return &Controller{
		credentials: credentials,
		ledgers:     ledgers,
		logger:      log.OrDiscard(logger).WithComponent(log.ComponentSession),
	}
}

func (c *Controller) State() State {
	return c.state
}

// Identity returns the active identity.
func (c *Controller) Identity() (core.Identity, bool) {
	return c.identity, c.state == Active
}

// Start restores a persisted session, if one exists, by loading its ledger.
// Without one the controller stays Anonymous.
func (c *Controller) Start(ctx context.Context) error {
	if c.state != Anonymous {
		return ErrSessionActive
	}
	id, ok, err := c.credentials.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		c.logger.DebugContext(ctx, "No stored session")
		return nil
	}
	c.state = Authenticating
	return c.activate(ctx, id)
}

// Register creates an identity and activates it.
func (c *Controller) Register(ctx context.Context, username, email, secret string) (core.Identity, error) {
	if c.state != Anonymous {
		return core.Identity{}, ErrSessionActive
	}
	c.state = Authenticating

	id, err := c.credentials.Register(ctx, username, email, secret)
	if err != nil {
		c.state = Anonymous
		return core.Identity{}, err
	}
	if err := c.activate(ctx, id); err != nil {
		return core.Identity{}, err
	}
	return id, nil
}

// Login authenticates and activates the matching identity.
func (c *Controller) Login(ctx context.Context, usernameOrEmail, secret string) (core.Identity, error) {
	if c.state != Anonymous {
		return core.Identity{}, ErrSessionActive
	}
	c.state = Authenticating

	id, err := c.credentials.Authenticate(ctx, usernameOrEmail, secret)
	if err != nil {
		c.state = Anonymous
		return core.Identity{}, err
	}
	if err := c.activate(ctx, id); err != nil {
		return core.Identity{}, err
	}
	return id, nil
}

// Logout ends the stored session and drops the in-memory ledger. Persisted
// ledgers are untouched. If the session marker cannot be cleared the
// session stays Active.
func (c *Controller) Logout(ctx context.Context) error {
	if c.state != Active {
		return ErrNotActive
	}
	if err := c.credentials.EndSession(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.ledgers.Unload()

	c.logger.InfoContext(ctx, "Logged out",
		log.FieldOperation, log.OpLogout,
		log.FieldIdentityID, c.identity.ID)
	c.state = Anonymous
	c.identity = core.Identity{}
	return nil
}

func (c *Controller) activate(ctx context.Context, id core.Identity) error {
	if _, err := c.ledgers.Load(ctx, id); err != nil {
		c.state = Anonymous
		c.logger.ErrorContext(ctx, "Failed to load ledger",
			log.NewFields().
				WithOperation(log.OpLoad).
				WithIdentity(id.ID).
				WithError(err, log.ErrorTypeStorage).
				ToSlice()...)
		return fmt.Errorf("load ledger: %w", err)
	}
	c.state = Active
	c.identity = id
	c.logger.InfoContext(ctx, "Session active",
		log.FieldIdentityID, id.ID,
		log.FieldState, c.state.String())
	return nil
}

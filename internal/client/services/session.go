package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Keys of the persisted session entries in the metadata store.
const (
	TokenKey = "token"
	UserKey  = "user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email/phone or password")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrMalformedAuthReply = errors.New("malformed authentication response")
)

// SessionManager owns the administrator session and is the only writer of
// its persisted copy. The token and the user are always set and cleared
// together.
type SessionManager struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time

	// writeMu serialises transitions so the persisted and in-memory copies
	// change in the same order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	session models.Session
}

func NewSessionManager(c client.Client, db *sql.DB, logger logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SessionManager{
		client: c,
		db:     db,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

func (s *SessionManager) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Initialize rehydrates the session from the metadata store. Anything short
// of a complete, well-formed pair (including a token whose JWT expiry has
// passed) discards both entries and leaves the session logged out. It never
// fails; store errors are logged.
func (s *SessionManager) Initialize(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sess, reason := s.readPersisted(ctx)
	if reason == "" {
		s.set(sess)
		s.logger.Info(ctx, "session restored", "user_id", sess.User.ID)
		return
	}

	s.logger.Info(ctx, "no usable persisted session", "reason", reason)
	s.clearLocked(ctx)
}

// readPersisted returns the stored session, or a non-empty reason why it
// cannot be used.
func (s *SessionManager) readPersisted(ctx context.Context) (models.Session, string) {
	repo := s.repo(s.db)

	token, ok, err := repo.Get(ctx, TokenKey)
	if err != nil {
		s.logger.Error(ctx, "failed to read persisted token", "error", err)
		return models.Session{}, "token unreadable"
	}
	if !ok || len(token) == 0 {
		return models.Session{}, "token missing"
	}

	rawUser, ok, err := repo.Get(ctx, UserKey)
	if err != nil {
		s.logger.Error(ctx, "failed to read persisted user", "error", err)
		return models.Session{}, "user unreadable"
	}
	if !ok {
		return models.Session{}, "user missing"
	}

	var user models.UserProfile
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return models.Session{}, "user malformed"
	}
	if user.ID == 0 {
		return models.Session{}, "user has no id"
	}

	if s.tokenExpired(string(token)) {
		return models.Session{}, "token expired"
	}

	return models.Session{User: &user, Token: string(token)}, ""
}

// tokenExpired reports whether token is a JWT with an exp claim in the past.
// Opaque tokens are never considered expired locally.
func (s *SessionManager) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}

// Login authenticates and adopts the returned session. On failure the
// current session is left as it was.
func (s *SessionManager) Login(ctx context.Context, identifier, password string) error {
	res, err := s.client.Login(ctx, identifier, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrValidation) {
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return err
	}
	return s.adopt(ctx, res)
}

// Register creates an account and adopts the returned session, as Login
// does. req is not modified, so callers can re-prompt with the same values.
func (s *SessionManager) Register(ctx context.Context, req models.RegisterRequest) error {
	if req.Password != req.PasswordConfirmation {
		return client.NewValidationError("password", "The password field confirmation does not match.")
	}

	res, err := s.client.Register(ctx, req)
	if err != nil {
		var ve *client.ValidationError
		if errors.As(err, &ve) && ve.FirstMessage() != "" {
			return ve
		}
		if errors.Is(err, client.ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	return s.adopt(ctx, res)
}

// adopt persists the pair in one transaction and only then exposes it.
func (s *SessionManager) adopt(ctx context.Context, res *models.AuthResult) error {
	if res == nil || res.User == nil || res.Token == "" {
		return ErrMalformedAuthReply
	}

	rawUser, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, TokenKey, []byte(res.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, UserKey, rawUser)
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	user := *res.User
	s.set(models.Session{User: &user, Token: res.Token})
	s.logger.Info(ctx, "session started", "user_id", user.ID)
	return nil
}

// Logout tells the backend, best effort, and then clears the session no
// matter how that went.
func (s *SessionManager) Logout(ctx context.Context) {
	if s.Token() != "" {
		if err := s.client.Logout(ctx); err != nil {
			s.logger.Warn(ctx, "backend logout failed, clearing local session anyway", "error", err)
		}
	}
	s.clear(ctx)
	s.logger.Info(ctx, "logged out")
}

// Expire drops the session without contacting the backend. The transport
// calls it with the token the backend rejected; a session started with a
// different token since then is left alone.
func (s *SessionManager) Expire(ctx context.Context, token string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Current()
	if !current.Authenticated() || current.Token != token {
		s.logger.Debug(ctx, "ignoring rejection of a token that is no longer current")
		return
	}
	s.logger.Warn(ctx, "session rejected by backend, logging out")
	s.clearLocked(ctx)
}

func (s *SessionManager) clear(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.clearLocked(ctx)
}

// clearLocked empties memory and the store. The delete ignores cancellation
// of ctx so an interrupted logout still removes the persisted pair.
func (s *SessionManager) clearLocked(ctx context.Context) {
	s.set(models.Session{})
	if err := s.repo(s.db).Delete(context.WithoutCancel(ctx), TokenKey, UserKey); err != nil {
		s.logger.Error(ctx, "failed to delete persisted session", "error", err)
	}
}

func (s *SessionManager) set(sess models.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

// Current returns a copy of the session.
func (s *SessionManager) Current() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func (s *SessionManager) User() *models.UserProfile {
	return s.Current().User
}

func (s *SessionManager) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *SessionManager) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

var _ client.TokenSource = (*SessionManager)(nil)

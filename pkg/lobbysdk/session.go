package lobbysdk

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
	"github.com/aussiebroadwan/lobby/pkg/cryptox"
)

// State is where a Session sits in its authentication lifecycle.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the session state. Authenticated is true
// exactly when User is set and Token is non-empty.
type Snapshot struct {
	User          *Profile
	Token         string
	Authenticated bool
}

// Session owns the signed-in identity. It is the only writer of the token
// and user records in the credential store; the Client only reads them.
//
// Login and AutoLogin are single-flighted and serialised against each other.
// Logout and Invalidate are never blocked by an in-flight round-trip: they
// bump an epoch so the late response is discarded instead of resurrecting
// the cleared session.
type Session struct {
	client *Client
	store  credstore.Store
	logger *slog.Logger

	// Now is the clock for VIP and token expiry checks.
	Now func() time.Time

	// AvatarBaseURL is the gravatar-compatible avatar service.
	AvatarBaseURL string

	flight singleflight.Group
	opMu   sync.Mutex

	mu      sync.RWMutex
	user    *Profile
	token   string
	pending int
	epoch   uint64
}

// NewSession creates an anonymous session over client and registers it to be
// invalidated whenever the service answers 401.
func NewSession(client *Client, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		client:        client,
		store:         client.Store(),
		logger:        logger.With("component", "session"),
		Now:           time.Now,
		AvatarBaseURL: DefaultAvatarBaseURL,
	}

	client.OnUnauthorized(s.Invalidate)
	volatile := s.Token
	client.volatileToken.Store(&volatile)

	return s
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.authenticatedLocked():
		return StateAuthenticated
	case s.pending > 0:
		return StateAuthenticating
	default:
		return StateAnonymous
	}
}

// IsAuthenticated reports whether a user and token are held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

func (s *Session) authenticatedLocked() bool {
	return s.user != nil && s.token != ""
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		User:          s.user.Clone(),
		Token:         s.token,
		Authenticated: s.authenticatedLocked(),
	}
}

// User returns a copy of the signed-in profile, or nil.
func (s *Session) User() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Token returns the in-memory token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Avatar is the avatar hash for the signed-in user's email.
func (s *Session) Avatar() string {
	if u := s.User(); u != nil {
		return AvatarHash(u.Email)
	}
	return ""
}

// AvatarURL is the full avatar image URL, or "" when there is no email.
func (s *Session) AvatarURL() string {
	if u := s.User(); u != nil {
		return AvatarURL(s.AvatarBaseURL, u.Email)
	}
	return ""
}

// VIPExpiry returns the user's VIP expiry if it is still in the future.
func (s *Session) VIPExpiry() *time.Time {
	return s.User().ActiveVIP(s.now())
}

// Logout clears the in-memory identity and the persisted records. It never
// fails; store errors are logged.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := ""
	if s.user != nil {
		username = s.user.Username
	}
	s.clearLocked(ctx)
	s.logger.Info("logged out", "username", username)
}

// Invalidate drops the identity after the service rejected the token. It is
// registered as an unauthorized hook and must not wait on opMu, since the
// 401 may arrive inside Login or AutoLogin.
func (s *Session) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked(ctx)
	s.logger.Info("session invalidated")
}

// clearLocked must be called with mu held.
func (s *Session) clearLocked(ctx context.Context) {
	s.user = nil
	s.token = ""
	s.epoch++
	s.forgetLocked(ctx)
}

// begin marks an authentication round-trip as in flight and returns the
// epoch it must still match to commit.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending++
	return s.epoch
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
}

// commit installs the identity if no logout or invalidation happened since
// epoch. persist runs under the same lock so a concurrent Logout cannot slip
// between the memory and store writes.
func (s *Session) commit(epoch uint64, token string, user *Profile, persist func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return false
	}
	s.user = user
	s.token = token
	if persist != nil {
		persist()
	}
	return true
}

// absorb clears the session after a failed probe. It is a no-op when the
// session was already reset since epoch.
func (s *Session) absorb(ctx context.Context, epoch uint64, token string, cause error) {
	s.logger.Warn("auto-login failed",
		"token_fp", cryptox.FingerprintToken(token),
		"error", cause,
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.clearLocked(ctx)
	}
}

func (s *Session) persistTokenLocked(ctx context.Context, token string) {
	if err := s.store.Set(ctx, credstore.KeyToken, token); err != nil {
		s.logger.Warn("failed to persist token", "error", err)
	}
}

func (s *Session) persistUserLocked(ctx context.Context, user *Profile) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("failed to encode user record", "error", err)
		return
	}
	if err := s.store.Set(ctx, credstore.KeyUser, string(raw)); err != nil {
		s.logger.Warn("failed to persist user record", "error", err)
	}
}

func (s *Session) forgetLocked(ctx context.Context) {
	for _, key := range []string{credstore.KeyToken, credstore.KeyUser} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove persisted record", "key", key, "error", err)
		}
	}
}

// RememberedUser returns the persisted user record, if any. It is what the
// last remembered login or successful auto-login saw and is not proof of a
// live session.
func (s *Session) RememberedUser(ctx context.Context) (*Profile, bool) {
	raw, ok, err := s.store.Get(ctx, credstore.KeyUser)
	if err != nil || !ok || raw == "" {
		return nil, false
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false
	}
	return &p, true
}

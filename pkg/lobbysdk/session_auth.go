package lobbysdk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
	"github.com/aussiebroadwan/lobby/pkg/cryptox"
	"github.com/aussiebroadwan/lobby/pkg/jwtx"
)

var (
	errNoToken      = errors.New("login response carried no token")
	errTokenExpired = errors.New("persisted token has expired")
)

// Login signs in with credentials. The token and user record are persisted
// only when creds.RememberMe is set; otherwise any previously remembered
// identity is forgotten and the token lives in memory only.
//
// Concurrent calls with identical credentials share one round-trip; calls
// with different credentials run one after another.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	_, err := s.shared(ctx, loginFlightKey(creds), func(ctx context.Context) (any, error) {
		s.opMu.Lock()
		defer s.opMu.Unlock()
		return nil, s.login(ctx, creds)
	})
	var loginErr *LoginFailedError
	if err != nil && !errors.As(err, &loginErr) {
		// ctx ended while waiting on a shared attempt.
		return &LoginFailedError{Msg: DefaultLoginMessage, Err: err}
	}
	return err
}

// loginFlightKey identifies a login attempt by everything that affects its
// outcome. The password only enters the key as part of a digest.
func loginFlightKey(creds Credentials) string {
	h := sha256.New()
	h.Write([]byte(creds.Username))
	h.Write([]byte{0})
	h.Write([]byte(creds.Password))
	h.Write([]byte{0})
	if creds.RememberMe {
		h.Write([]byte{1})
	}
	return "login:" + hex.EncodeToString(h.Sum(nil))
}

// shared runs fn once per key across concurrent callers. fn runs detached
// from the caller's cancellation; each caller stops waiting when its own ctx
// is done.
func (s *Session) shared(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) { return fn(detached) })

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) login(ctx context.Context, creds Credentials) error {
	epoch := s.begin()
	defer s.end()

	env, err := s.client.Send(ctx, "/login", http.MethodPost, creds)
	if err != nil {
		s.logger.Info("login rejected", "username", creds.Username, "error", err)
		return &LoginFailedError{Msg: messageOf(err, DefaultLoginMessage), Err: err}
	}

	var data loginData
	if err := env.DecodeData(&data); err != nil {
		return &LoginFailedError{Msg: DefaultLoginMessage, Err: err}
	}
	if data.Token == "" {
		return &LoginFailedError{Msg: DefaultLoginMessage, Err: errNoToken}
	}

	user := data.toProfile(s.now())
	committed := s.commit(epoch, data.Token, user, func() {
		if creds.RememberMe {
			s.persistTokenLocked(ctx, data.Token)
			s.persistUserLocked(ctx, user)
			return
		}
		s.forgetLocked(ctx)
	})
	if !committed {
		return &LoginFailedError{Msg: DefaultLoginMessage, Err: errSuperseded}
	}

	s.logger.Info("logged in",
		"username", user.Username,
		"remember", creds.RememberMe,
		"token_fp", cryptox.FingerprintToken(data.Token),
	)
	return nil
}

// AutoLogin tries to restore the session from the persisted token. It
// returns false when there is no token or the service does not accept it;
// in the latter case memory and store are cleared. The cause is logged,
// never returned.
func (s *Session) AutoLogin(ctx context.Context) bool {
	v, err := s.shared(ctx, "autoLogin", func(ctx context.Context) (any, error) {
		s.opMu.Lock()
		defer s.opMu.Unlock()
		return s.autoLogin(ctx), nil
	})
	if err != nil {
		s.logger.Info("stopped waiting for auto-login", "error", err)
		return false
	}
	ok, _ := v.(bool)
	return ok
}

// AdoptToken persists a token handed over by single sign-on and validates it
// with AutoLogin.
func (s *Session) AdoptToken(ctx context.Context, token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	err := s.store.Set(ctx, credstore.KeyToken, token)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("failed to persist handed-over token", "error", err)
		return false
	}

	return s.autoLogin(ctx)
}

// autoLogin must be called with opMu held.
func (s *Session) autoLogin(ctx context.Context) bool {
	epoch := s.begin()
	defer s.end()

	token, found, err := s.store.Get(ctx, credstore.KeyToken)
	if err != nil {
		// Corrupt, or sealed under a different key. Treated like a
		// rejected token.
		s.absorb(ctx, epoch, "", fmt.Errorf("read persisted token: %w", err))
		return false
	}
	if !found || token == "" {
		return false
	}

	if exp, ok := jwtx.PeekExpiry(token); ok && !s.now().Before(exp) {
		s.absorb(ctx, epoch, token, errTokenExpired)
		return false
	}

	env, err := s.client.Send(ctx, "/GetUserInfo", http.MethodPost, nil)
	if err != nil {
		s.absorb(ctx, epoch, token, err)
		return false
	}

	var w profileWire
	if err := env.DecodeData(&w); err != nil {
		s.absorb(ctx, epoch, token, err)
		return false
	}

	user := w.toProfile(s.now())
	if !s.commit(epoch, token, user, func() { s.persistUserLocked(ctx, user) }) {
		s.logger.Info("auto-login discarded, session reset meanwhile")
		return false
	}

	s.logger.Info("auto-login succeeded",
		"username", user.Username,
		"token_fp", cryptox.FingerprintToken(token),
	)
	return true
}

package lobbysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
	"github.com/aussiebroadwan/lobby/pkg/idx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// ErrPayloadNotObject is returned when a body-carrying request has a payload
// that does not encode to a JSON object, so the token cannot be merged in.
var ErrPayloadNotObject = errors.New("payload must encode to a JSON object")

// Send performs one call against the service. For body-carrying methods the
// JSON body is payload merged with {"token": <current token>}; the token key
// wins on conflict. For GET and HEAD the token travels as a query parameter.
//
// A transport 401 runs the unauthorized hooks before Send returns.
func (c *Client) Send(ctx context.Context, endpoint, method string, payload any) (*Envelope, error) {
	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodPost
	}

	token := c.currentToken(ctx)

	req, err := c.newRequest(ctx, endpoint, method, payload, token)
	if err != nil {
		return nil, err
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := parseStatusError(resp, body)
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Warn("service rejected token", "endpoint", endpoint)
			c.runUnauthorizedHooks(ctx)
		}
		return nil, statusErr
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	env.Raw = body

	if env.Code != http.StatusOK {
		msg := env.Msg
		if msg == "" {
			msg = DefaultDomainMessage
		}
		return nil, &DomainError{Code: env.Code, Msg: msg}
	}

	return &env, nil
}

// currentToken reads the token fresh from the store. A session that signed
// in without remembering its token supplies it through volatileToken. An
// unreadable stored token is logged and treated as absent.
func (c *Client) currentToken(ctx context.Context) string {
	var token string
	if c.store != nil {
		stored, _, err := c.store.Get(ctx, credstore.KeyToken)
		if err != nil {
			c.logger.Warn("failed to read stored token, sending without it", "error", err)
		}
		token = stored
	}
	if token == "" {
		if fn := c.volatileToken.Load(); fn != nil {
			token = (*fn)()
		}
	}
	return token
}

func (c *Client) newRequest(
	ctx context.Context,
	endpoint, method string,
	payload any,
	token string,
) (*http.Request, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	target, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	var body io.Reader
	if carriesBody(method) {
		encoded, err := mergeToken(payload, token)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	} else if token != "" {
		q := target.Query()
		q.Set("token", token)
		target.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(slogx.RequestIDHeader, idx.New().String())

	return req, nil
}

func carriesBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead:
		return false
	default:
		return true
	}
}

// mergeToken encodes payload as a JSON object with the token field set.
// A nil payload becomes {} before the merge.
func mergeToken(payload any, token string) ([]byte, error) {
	fields := map[string]json.RawMessage{}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, ErrPayloadNotObject
			}
			if fields == nil {
				fields = map[string]json.RawMessage{}
			}
		}
	}

	encodedToken, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}
	fields["token"] = encodedToken

	return json.Marshal(fields)
}

// parseStatusError builds a StatusError, preferring the envelope msg when
// the body has one.
func parseStatusError(resp *http.Response, body []byte) error {
	msg := http.StatusText(resp.StatusCode)

	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Msg != "" {
		msg = env.Msg
	}

	return &StatusError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		kind:       classifyStatus(resp.StatusCode),
	}
}

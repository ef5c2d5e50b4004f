package credstore

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aussiebroadwan/lobby/pkg/cryptox"
)

// Sealed encrypts values before handing them to the wrapped Store. The key
// name is bound as additional data, so a sealed token cannot be replayed
// under the user key or vice versa.
type Sealed struct {
	inner  Store
	sealer *cryptox.Sealer
}

var _ Store = (*Sealed)(nil)

// NewSealed wraps inner.
func NewSealed(inner Store, sealer *cryptox.Sealer) *Sealed {
	return &Sealed{inner: inner, sealer: sealer}
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	sealed, err := base64.RawStdEncoding.DecodeString(raw)
	if err != nil {
		return "", false, fmt.Errorf("credstore: decode %s: %w", key, err)
	}

	plain, err := s.sealer.Open(sealed, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("credstore: open %s: %w", key, err)
	}

	return string(plain), true, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	sealed, err := s.sealer.Seal([]byte(value), []byte(key))
	if err != nil {
		return fmt.Errorf("credstore: seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *Sealed) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

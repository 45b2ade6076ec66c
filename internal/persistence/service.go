package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
)

// Service is the persistence surface used by extensions. No method returns
// an error or panics; faults are reported against the owning identity.
type Service struct {
	backend Backend
	catcher *isolation.Catcher
}

// NewService wraps backend.
func NewService(backend Backend, catcher *isolation.Catcher) *Service {
	return &Service{backend: backend, catcher: catcher}
}

// Backend returns the wrapped backend.
func (s *Service) Backend() Backend {
	return s.backend
}

// Load returns owner's blob. A missing blob or a fault yields an empty map.
func (s *Service) Load(ctx context.Context, owner identity.Identity, discriminator ...string) map[string]any {
	key := NewKey(owner, discriminator...)
	data := isolation.CatchValueE(s.catcher, owner, s.name("load", key), map[string]any(nil), func() (map[string]any, error) {
		data, err := s.backend.Load(ctx, key)
		if errors.Is(err, ErrNotFound) {
			return map[string]any{}, nil
		}
		return data, err
	})
	if data == nil {
		return map[string]any{}
	}
	return data
}

// Save replaces owner's blob with data and reports whether it succeeded.
func (s *Service) Save(ctx context.Context, owner identity.Identity, data map[string]any, discriminator ...string) bool {
	key := NewKey(owner, discriminator...)
	if data == nil {
		data = map[string]any{}
	}
	err := s.catcher.Catch(owner, s.name("save", key), func() error {
		return s.backend.Save(ctx, key, data)
	})
	return err == nil
}

// Remove deletes owner's blob and reports whether it succeeded.
func (s *Service) Remove(ctx context.Context, owner identity.Identity, discriminator ...string) bool {
	key := NewKey(owner, discriminator...)
	err := s.catcher.Catch(owner, s.name("remove", key), func() error {
		return s.backend.Remove(ctx, key)
	})
	return err == nil
}

func (s *Service) name(op string, key Key) string {
	return fmt.Sprintf("%s.%s(%s)", s.backend.Name(), op, key.DataName())
}

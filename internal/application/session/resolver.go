// Package session abre la sesión del usuario autenticado: trae su registro del backend y
// fija sus estados resueltos una sola vez.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/solarcrm-api/internal/application/ports"
	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

type cached struct {
	session entity.Session
	expires time.Time
}

// Resolver resuelve y cachea sesiones por usuario durante ttl.
type Resolver struct {
	users ports.UserDirectory
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	cache map[string]cached
}

// NewResolver construye el resolver. ttl <= 0 desactiva la caché.
func NewResolver(users ports.UserDirectory, ttl time.Duration) *Resolver {
	return &Resolver{
		users: users,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cached),
	}
}

// Resolve devuelve la sesión de userID. role es el rol del token: si no coincide con el
// del backend el token quedó desactualizado y se rechaza.
func (r *Resolver) Resolve(ctx context.Context, userID string, role workflow.Role) (entity.Session, error) {
	if userID == "" {
		return entity.Session{}, domain.ErrUnauthorized
	}
	if s, ok := r.lookup(userID); ok {
		if s.Role() != role {
			return entity.Session{}, fmt.Errorf("%w: el rol del token no coincide", domain.ErrForbidden)
		}
		return s, nil
	}

	u, err := r.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return entity.Session{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
		return entity.Session{}, fmt.Errorf("session: obtener usuario %s: %w", userID, err)
	}
	if !u.Active {
		return entity.Session{}, fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}
	if u.Role != role {
		return entity.Session{}, fmt.Errorf("%w: el rol del token no coincide", domain.ErrForbidden)
	}

	s := entity.NewSession(*u)
	r.store(s)
	return s, nil
}

// Invalidate descarta la sesión cacheada del usuario.
func (r *Resolver) Invalidate(userID string) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

func (r *Resolver) lookup(userID string) (entity.Session, bool) {
	if r.ttl <= 0 {
		return entity.Session{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cache[userID]
	if !ok {
		return entity.Session{}, false
	}
	if r.now().After(c.expires) {
		delete(r.cache, userID)
		return entity.Session{}, false
	}
	return c.session, true
}

func (r *Resolver) store(s entity.Session) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	r.cache[s.UserID()] = cached{session: s, expires: r.now().Add(r.ttl)}
	r.mu.Unlock()
}

// Package board mantiene la colección local de solicitudes que alimenta el tablero Kanban.
// Las respuestas REST y los eventos WebSocket escriben aquí con la misma operación
// de reemplazo por ID.
package board

import (
	"sort"
	"sync"

	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
)

// Store es la colección de solicitudes indexada por ID. Seguro para uso concurrente.
type Store struct {
	mu        sync.RWMutex
	enquiries map[string]*entity.Enquiry
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{enquiries: make(map[string]*entity.Enquiry)}
}

// Apply reemplaza la instantánea guardada con e, salvo que la guardada sea más reciente
// (ver Enquiry.NewerThan). Devuelve true si hubo reemplazo.
func (s *Store) Apply(e *entity.Enquiry) bool {
	if e == nil || e.ID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.enquiries[e.ID]
	if current != nil && !e.NewerThan(current) {
		return false
	}
	s.enquiries[e.ID] = e.Clone()
	return true
}

// Get devuelve una copia de la solicitud; ok=false si no está.
func (s *Store) Get(id string) (*entity.Enquiry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enquiries[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Remove quita la solicitud del tablero.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.enquiries, id)
	s.mu.Unlock()
}

// List devuelve copias de todas las solicitudes ordenadas por estado canónico y luego
// por número de orden.
func (s *Store) List() []*entity.Enquiry {
	s.mu.RLock()
	out := make([]*entity.Enquiry, 0, len(s.enquiries))
	for _, e := range s.enquiries {
		out = append(out, e.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].Status.Index(), out[j].Status.Index(); a != b {
			return a < b
		}
		if out[i].OrderNumber != out[j].OrderNumber {
			return out[i].OrderNumber < out[j].OrderNumber
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len número de solicitudes en el tablero.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.enquiries)
}

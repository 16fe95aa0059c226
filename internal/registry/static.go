// internal/registry/static.go
package registry

import (
	"context"
	"sync"
	"time"

	"github-digest-reporter/internal/model"
)

// StaticSource is an in-memory registry seeded from configuration, used for
// local and test runs instead of the database-backed source.
type StaticSource struct {
	mu   sync.RWMutex
	regs []model.Registration
}

// NewStaticSource creates a Source holding the given registrations.
func NewStaticSource(regs []model.Registration) *StaticSource {
	return &StaticSource{regs: regs}
}

// List returns a copy of the held registrations.
func (s *StaticSource) List(_ context.Context) ([]model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Registration, len(s.regs))
	copy(out, s.regs)
	return out, nil
}

// Upsert adds or replaces a registration by id.
func (s *StaticSource) Upsert(_ context.Context, reg model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.regs {
		if s.regs[i].ID == reg.ID {
			reg.Members = s.regs[i].Members
			reg.MembersUpdatedAt = s.regs[i].MembersUpdatedAt
			s.regs[i] = reg
			return nil
		}
	}
	s.regs = append(s.regs, reg)
	return nil
}

// UpdateMembers replaces the member set for a registration. Unknown ids are
// ignored; the static fixture is not authoritative.
func (s *StaticSource) UpdateMembers(_ context.Context, id string, members []string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.regs {
		if s.regs[i].ID == id {
			s.regs[i].Members = members
			s.regs[i].MembersUpdatedAt = updatedAt
			return nil
		}
	}
	return nil
}

// internal/registry/registry.go
package registry

import (
	"context"
	"time"

	"github-digest-reporter/internal/model"
)

// Source yields repository registrations and accepts membership updates.
// The digest pipeline only reads; the refresh job is the single writer.
type Source interface {
	List(ctx context.Context) ([]model.Registration, error)
	Upsert(ctx context.Context, reg model.Registration) error
	UpdateMembers(ctx context.Context, id string, members []string, updatedAt time.Time) error
}

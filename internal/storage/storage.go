// Package storage defines the persistence contracts for interaction records.
package storage

import (
	"context"

	"github.com/lailalab/aigateway/internal/domain"
)

// InteractionStore is the primary durable store for interaction records.
// A SaveInteraction followed by a read must be self-consistent for a single
// record: no partial rows become visible.
type InteractionStore interface {
	SaveInteraction(ctx context.Context, rec *domain.InteractionRecord) error
	ListInteractions(ctx context.Context, opts ListOptions) ([]domain.InteractionRecord, error)
	CountBySession(ctx context.Context, sessionID, module string) (int, error)
	Close() error
}

// InteractionSink is the append-only durability fallback, written only when
// the primary store fails. Same logical schema as the store.
type InteractionSink interface {
	Append(rec *domain.InteractionRecord) error
	Close() error
}

// ListOptions filters interaction listings. Zero values mean "no filter";
// Limit 0 applies a server-side default.
type ListOptions struct {
	SessionID string
	Module    string
	Limit     int
}

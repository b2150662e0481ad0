package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteIdle removes sessions whose last activity is before cutoff.
	DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error)
}

package session

import (
	"context"
	"time"
)

// Session is what the CLI remembers about one backend target.
type Session struct {
	Target    string
	Token     string
	Version   string
	UpdatedAt time.Time
}

type Repository interface {
	// Load returns nil, nil when nothing is stored for target.
	Load(ctx context.Context, target string) (*Session, error)
	// Save upserts s and marks its target as the most recent one.
	Save(ctx context.Context, s *Session) error
	Forget(ctx context.Context, target string) error
	List(ctx context.Context) ([]Session, error)
	// LastTarget returns "" when nothing has been saved yet.
	LastTarget(ctx context.Context) (string, error)
}

// Package session persists per-conversation dialogue state and transcripts.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
)

// Store keeps the latest Dialogue State per conversation id.
type Store interface {
	// Get returns the state for cid. found is false when no state exists yet.
	Get(ctx context.Context, cid string) (st *model.State, found bool, err error)

	// Put replaces the state for cid.
	Put(ctx context.Context, cid string, st *model.State) error

	// Delete forgets cid entirely, transcript included.
	Delete(ctx context.Context, cid string) error
}

// Turn is one transcript line.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Transcript is an optional append-only log of a conversation's turns.
type Transcript interface {
	AppendTurn(ctx context.Context, cid string, turns ...Turn) error
	LoadTurns(ctx context.Context, cid string) ([]Turn, error)
}

// NewID mints a conversation id.
func NewID() string {
	return uuid.NewString()
}

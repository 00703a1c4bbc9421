// README: Per-conversation trip state; the last confirmed trip a follow-up edits.
package session

import (
	"context"
	"time"

	"jeeny/internal/modules/location"
	"jeeny/internal/modules/pricing"
)

// Trip is the last trip quoted in a conversation.
type Trip struct {
	Start     location.Location `json:"start"`
	End       location.Location `json:"end"`
	CarClass  pricing.CarClass  `json:"car_class"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type Store interface {
	// Get returns the last trip and whether one exists.
	Get(ctx context.Context, sessionID string) (Trip, bool, error)
	Save(ctx context.Context, sessionID string, trip Trip) error
	Clear(ctx context.Context, sessionID string) error
}

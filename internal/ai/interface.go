package ai

import (
	"context"
)

// LLMProvider defines the contract for interacting with AI models.
// This interface allows for swapping different AI providers in the future.
type LLMProvider interface {
	// ParseUserIntent analyzes the user's message and extracts trip intent.
	// currentContext carries the last trip ("last_start", "last_end",
	// "last_car_class") so follow-ups can be recognised.
	ParseUserIntent(ctx context.Context, userMessage string, currentContext map[string]string) (*IntentResult, error)

	// MatchPlace picks the saved place name the user most likely meant, or
	// returns "" when none fits.
	MatchPlace(ctx context.Context, place string, candidates []string) (string, error)
}

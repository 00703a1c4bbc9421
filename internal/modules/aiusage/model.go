// README: Per-session allowance of assistant calls.
package aiusage

import (
	"errors"
	"time"
)

// ErrInsufficientTokens is returned when a session has used its allowance for the current window.
var ErrInsufficientTokens = errors.New("insufficient tokens")

const (
	// DefaultTokens is the number of assistant calls granted per window.
	DefaultTokens = 100
	DefaultWindow = 24 * time.Hour
)

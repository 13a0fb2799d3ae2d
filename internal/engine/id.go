package engine

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateID creates a short random ID for sessions.
func generateID() string {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		// Only fails if the system RNG does.
		return fmt.Sprintf("brew-%d", time.Now().UnixNano())
	}
	return id
}

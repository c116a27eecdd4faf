package pkg

import "github.com/google/uuid"

// GenerateSessionID - generates a new unique session ID.
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsValidSessionID - reports whether id looks like something GenerateSessionID produced.
func IsValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

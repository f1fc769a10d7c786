package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ParseID parses a string into an ID, rejecting blanks and non-UUID text
func ParseID(s string) (ID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return ID(parsed.String()), nil
}

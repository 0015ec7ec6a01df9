package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID indicates an identifier that is not a UUID in either
// accepted form.
var ErrInvalidID = errors.New("invalid id")

// CanonicalID renders a UUID in the wire-canonical form: lowercase 32 hex
// digits, no dashes. Cursor tokens use this form.
func CanonicalID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

// ParseID accepts the canonical 32-hex form as well as the dashed form.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w %q", ErrInvalidID, raw)
	}
	return id, nil
}

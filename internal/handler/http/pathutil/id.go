package pathutil

import (
	"errors"
	"regexp"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// MaxIDLength bounds path IDs. UUIDs are 36 characters.
const MaxIDLength = 64

var idPattern = regexp.MustCompile(`^` + idSegment + `$`)

// ValidateID checks an ID taken from r.PathValue.
//
//	ValidateID("6f1c0a4e-8d2b-4f7e-9a51-2c3d4e5f6a7b") // nil
//	ValidateID("../etc")                               // ErrInvalidID
func ValidateID(id string) error {
	if id == "" || len(id) > MaxIDLength || !idPattern.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

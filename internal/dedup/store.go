// Package dedup tracks per-user votes, likes and shares to reject duplicates
// before they reach the campaign API.
package dedup

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kyiku/mall-event-back/internal/model"
)

// Errors returned by stores.
var (
	ErrAlreadyActed  = errors.New("dedup: action already recorded")
	ErrUnknownAction = errors.New("dedup: unknown action")
	ErrEmptyUserID   = errors.New("dedup: empty user id")
)

// pseudoPrefix marks identifiers that were generated instead of given.
const pseudoPrefix = "anon-"

// Store persists user action records.
type Store interface {
	// Get returns the record for userID. Unknown users get an empty record.
	Get(ctx context.Context, userID string) (*model.UserActions, error)
	// Record stores the action and returns the updated record.
	// It returns ErrAlreadyActed when the action is a duplicate.
	Record(ctx context.Context, userID string, action model.Action, submissionID string) (*model.UserActions, error)
}

// NewPseudoUserID generates an identifier for users without a phone number.
func NewPseudoUserID() string {
	return pseudoPrefix + uuid.New().String()
}

// IsPseudoUserID reports whether id was issued by NewPseudoUserID.
func IsPseudoUserID(id string) bool {
	if len(id) <= len(pseudoPrefix) || id[:len(pseudoPrefix)] != pseudoPrefix {
		return false
	}
	_, err := uuid.Parse(id[len(pseudoPrefix):])
	return err == nil
}

func validate(userID string, action model.Action) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if !action.Valid() {
		return ErrUnknownAction
	}
	return nil
}

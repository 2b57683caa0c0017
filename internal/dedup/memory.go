package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/kyiku/mall-event-back/internal/model"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	records map[string]*model.UserActions
	mu      sync.RWMutex
	expiry  time.Duration // 0 means no expiry
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore with no expiry.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithExpiry(0)
}

// NewMemoryStoreWithExpiry creates a MemoryStore whose records expire after
// expiry without updates.
func NewMemoryStoreWithExpiry(expiry time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.UserActions),
		expiry:  expiry,
		now:     time.Now,
	}
}

// Get returns a copy of the record for userID.
func (s *MemoryStore) Get(_ context.Context, userID string) (*model.UserActions, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	s.mu.RLock()
	rec, exists := s.records[userID]
	var snapshot *model.UserActions
	if exists {
		snapshot = rec.Clone()
	}
	s.mu.RUnlock()

	if !exists {
		return model.NewUserActions(userID), nil
	}

	if s.expired(snapshot) {
		s.mu.Lock()
		defer s.mu.Unlock()

		// A Record may have replaced the record since the read lock was released.
		current, ok := s.records[userID]
		if !ok || s.expired(current) {
			delete(s.records, userID)
			return model.NewUserActions(userID), nil
		}
		return current.Clone(), nil
	}

	return snapshot, nil
}

// Record stores the action for userID.
func (s *MemoryStore) Record(_ context.Context, userID string, action model.Action, submissionID string) (*model.UserActions, error) {
	if err := validate(userID, action); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[userID]
	if !exists || s.expired(rec) {
		rec = model.NewUserActions(userID)
		s.records[userID] = rec
	}

	if !rec.Apply(action, submissionID, s.now()) {
		return rec.Clone(), ErrAlreadyActed
	}
	return rec.Clone(), nil
}

// Delete removes the record for userID.
func (s *MemoryStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) expired(rec *model.UserActions) bool {
	return s.expiry > 0 && !rec.LastUpdated.IsZero() && s.now().Sub(rec.LastUpdated) > s.expiry
}

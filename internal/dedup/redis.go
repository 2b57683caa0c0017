package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kyiku/mall-event-back/internal/model"
)

// keyPrefix namespaces dedup records in Redis.
const keyPrefix = "dedup:"

// maxTxRetries bounds optimistic transaction retries on concurrent writes.
const maxTxRetries = 5

// RedisStore keeps records in Redis as JSON documents.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration // 0 means no expiry
	now    func() time.Time
}

// NewRedisStore creates a RedisStore. Records expire ttl after their last update.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get returns the record for userID.
func (s *RedisStore) Get(ctx context.Context, userID string) (*model.UserActions, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	data, err := s.client.Get(ctx, recordKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewUserActions(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dedup record: %w", err)
	}
	return decodeRecord(userID, data)
}

// Record stores the action using WATCH/MULTI so concurrent writers for the
// same user do not lose updates.
func (s *RedisStore) Record(ctx context.Context, userID string, action model.Action, submissionID string) (*model.UserActions, error) {
	if err := validate(userID, action); err != nil {
		return nil, err
	}

	key := recordKey(userID)
	var result *model.UserActions
	var duplicate bool

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		rec := model.NewUserActions(userID)
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if rec, err = decodeRecord(userID, data); err != nil {
				return err
			}
		}

		duplicate = !rec.Apply(action, submissionID, s.now())
		result = rec
		if duplicate {
			return nil
		}

		encoded, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to record dedup action: %w", err)
		}
		if duplicate {
			return result, ErrAlreadyActed
		}
		return result, nil
	}
	return nil, fmt.Errorf("failed to record dedup action: %w", redis.TxFailedErr)
}

func recordKey(userID string) string {
	return keyPrefix + userID
}

func decodeRecord(userID string, data []byte) (*model.UserActions, error) {
	rec := model.NewUserActions(userID)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode dedup record: %w", err)
	}
	if rec.LikedSubmissions == nil {
		rec.LikedSubmissions = []string{}
	}
	if rec.SharedSubmissions == nil {
		rec.SharedSubmissions = []string{}
	}
	rec.UserID = userID
	return rec, nil
}

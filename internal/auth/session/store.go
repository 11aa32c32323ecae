// Package session keeps server-side login sessions in Redis. A session binds
// a user id to the public view that was current at login time; one session
// per user, last login wins.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no session exists for the user.
var ErrNotFound = errors.New("session: not found")

const keyPrefix = "session:"

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Put establishes (or replaces) the session for a user.
func (s *Store) Put(ctx context.Context, userID string, view domain.PublicUser) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("session: encode view: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+userID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: store: %w", err)
	}
	return nil
}

// Get returns the session view for a user.
func (s *Store) Get(ctx context.Context, userID string) (domain.PublicUser, error) {
	payload, err := s.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PublicUser{}, ErrNotFound
	}
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("session: fetch: %w", err)
	}

	var view domain.PublicUser
	if err := json.Unmarshal(payload, &view); err != nil {
		return domain.PublicUser{}, fmt.Errorf("session: decode view: %w", err)
	}
	return view, nil
}

// Delete removes the session for a user. Deleting a missing session is not
// an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

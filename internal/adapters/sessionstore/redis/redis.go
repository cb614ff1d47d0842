package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	fieldOwner     = "owner"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
	keyFieldPrefix = "key:"

	maxWatchAttempts = 5
)

// Store keeps one redis hash per upload session; the hash expires with the session
type Store struct {
	client *redis.Client
	prefix string
}

var _ port.SessionStore = (*Store)(nil)

// NewStore creates a Store writing under prefix
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) sessionKey(id uuid.UUID) string {
	return s.prefix + id.String()
}

// Save writes the whole session and sets its expiry
func (s *Store) Save(ctx context.Context, session domain.UploadSession) error {
	values := map[string]any{
		fieldOwner:     session.OwnerID.String(),
		fieldCreatedAt: session.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
	for storageKey, issued := range session.Keys {
		raw, err := json.Marshal(issued)
		if err != nil {
			return fmt.Errorf("failed to encode issued key: %w", err)
		}
		values[keyFieldPrefix+storageKey] = raw
	}

	key := s.sessionKey(session.ID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		pipe.ExpireAt(ctx, key, session.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save upload session: %w", errors.Join(err, domain.ErrTransient))
	}
	return nil
}

// Find loads a session; an expired or unknown id returns domain.ErrSessionNotFound
func (s *Store) Find(ctx context.Context, id uuid.UUID) (*domain.UploadSession, error) {
	fields, err := s.client.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load upload session: %w", errors.Join(err, domain.ErrTransient))
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return decodeSession(id, fields)
}

// Replace abandons oldKey and records next, atomically with respect to concurrent writers
func (s *Store) Replace(ctx context.Context, sessionID uuid.UUID, oldKey string, next domain.IssuedKey) error {
	return s.update(ctx, sessionID, []string{oldKey}, func(current map[string]domain.IssuedKey) (map[string]domain.IssuedKey, error) {
		old := current[oldKey]
		if old.State == domain.IssuedKeyStateAbandoned {
			return nil, domain.ErrStorageKeyAbandoned
		}
		old.State = domain.IssuedKeyStateAbandoned
		old.ReplacedBy = next.StorageKey
		return map[string]domain.IssuedKey{oldKey: old, next.StorageKey: next}, nil
	})
}

// MarkConsumed flags keys as attached to persisted uploads
func (s *Store) MarkConsumed(ctx context.Context, sessionID uuid.UUID, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.update(ctx, sessionID, keys, func(current map[string]domain.IssuedKey) (map[string]domain.IssuedKey, error) {
		changed := make(map[string]domain.IssuedKey, len(current))
		for storageKey, issued := range current {
			issued.State = domain.IssuedKeyStateConsumed
			changed[storageKey] = issued
		}
		return changed, nil
	})
}

// AddKeys records keys in an existing session without touching the other fields
func (s *Store) AddKeys(ctx context.Context, sessionID uuid.UUID, keys []domain.IssuedKey) error {
	if len(keys) == 0 {
		return nil
	}
	values := make(map[string]any, len(keys))
	for _, issued := range keys {
		raw, err := json.Marshal(issued)
		if err != nil {
			return fmt.Errorf("failed to encode issued key: %w", err)
		}
		values[keyFieldPrefix+issued.StorageKey] = raw
	}

	hashKey := s.sessionKey(sessionID)
	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, hashKey).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrSessionNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, values)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, hashKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !isDomainError(err) {
			return fmt.Errorf("failed to add keys to upload session: %w", errors.Join(err, domain.ErrTransient))
		}
		return err
	}
	return fmt.Errorf("failed to add keys to upload session: %w", errors.Join(redis.TxFailedErr, domain.ErrTransient))
}

// update reads the given keys under WATCH and writes back what fn returns
func (s *Store) update(ctx context.Context, sessionID uuid.UUID, keys []string,
	fn func(current map[string]domain.IssuedKey) (map[string]domain.IssuedKey, error)) error {
	hashKey := s.sessionKey(sessionID)
	fields := make([]string, len(keys))
	for i, k := range keys {
		fields[i] = keyFieldPrefix + k
	}

	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, hashKey).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrSessionNotFound
		}

		raw, err := tx.HMGet(ctx, hashKey, fields...).Result()
		if err != nil {
			return err
		}
		current := make(map[string]domain.IssuedKey, len(keys))
		for i, value := range raw {
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("%s: %w", keys[i], domain.ErrForeignStorageKey)
			}
			var issued domain.IssuedKey
			if err := json.Unmarshal([]byte(str), &issued); err != nil {
				return fmt.Errorf("failed to decode issued key: %w", err)
			}
			current[keys[i]] = issued
		}

		changed, err := fn(current)
		if err != nil {
			return err
		}

		values := make(map[string]any, len(changed))
		for storageKey, issued := range changed {
			encoded, err := json.Marshal(issued)
			if err != nil {
				return fmt.Errorf("failed to encode issued key: %w", err)
			}
			values[keyFieldPrefix+storageKey] = encoded
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, values)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, hashKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !isDomainError(err) {
			return fmt.Errorf("failed to update upload session: %w", errors.Join(err, domain.ErrTransient))
		}
		return err
	}
	return fmt.Errorf("failed to update upload session: %w", errors.Join(redis.TxFailedErr, domain.ErrTransient))
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrForeignStorageKey) ||
		errors.Is(err, domain.ErrStorageKeyAbandoned)
}

func decodeSession(id uuid.UUID, fields map[string]string) (*domain.UploadSession, error) {
	ownerID, err := uuid.Parse(fields[fieldOwner])
	if err != nil {
		return nil, fmt.Errorf("corrupted upload session owner: %w", err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	expiresAt, _ := time.Parse(time.RFC3339Nano, fields[fieldExpiresAt])

	session := &domain.UploadSession{
		ID:        id,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		Keys:      make(map[string]domain.IssuedKey),
	}
	for field, value := range fields {
		storageKey, ok := strings.CutPrefix(field, keyFieldPrefix)
		if !ok {
			continue
		}
		var issued domain.IssuedKey
		if err := json.Unmarshal([]byte(value), &issued); err != nil {
			return nil, fmt.Errorf("failed to decode issued key: %w", err)
		}
		session.Keys[storageKey] = issued
	}
	return session, nil
}

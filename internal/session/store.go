package session

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PlainStore persists sessions as JSON in a KV under a key prefix.
type PlainStore struct {
	kv     KV
	prefix string
}

// NewPlainStore creates a session store over the given KV.
func NewPlainStore(kv KV) *PlainStore {
	return &PlainStore{
		kv:     kv,
		prefix: "session:",
	}
}

// Save persists the session under the given ID.
func (s *PlainStore) Save(ctx context.Context, id string, sess Session, ttl time.Duration) error {
	body, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.kv.Set(ctx, s.prefix+id, body, ttl)
}

// Get loads the session for the given ID, or ErrNotFound.
func (s *PlainStore) Get(ctx context.Context, id string) (*Session, error) {
	body, err := s.kv.Get(ctx, s.prefix+id)
	if err != nil {
		if errors.Is(err, errKeyMissing) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	return &sess, nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *PlainStore) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, s.prefix+id)
}

// EncryptedStore is a session store that seals the session payload with
// AES-256-GCM under its own key before it reaches the KV. It is provisioned
// at startup as the hardened successor of PlainStore but carries no traffic
// yet; nothing in the login or gate flow reads or writes it.
type EncryptedStore struct {
	kv     KV
	aead   cipher.AEAD
	prefix string
}

// NewEncryptedStore creates an encrypted session store. The key must be
// exactly 32 bytes.
func NewEncryptedStore(kv KV, key []byte) (*EncryptedStore, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &EncryptedStore{
		kv:     kv,
		aead:   aead,
		prefix: "securesession:",
	}, nil
}

// Save seals and persists the session under the given ID.
func (s *EncryptedStore) Save(ctx context.Context, id string, sess Session, ttl time.Duration) error {
	body, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	// Nonce is prepended to the ciphertext; the session ID binds the
	// payload to its key as additional data.
	sealed := s.aead.Seal(nonce, nonce, body, []byte(id))
	return s.kv.Set(ctx, s.prefix+id, sealed, ttl)
}

// Get loads and opens the session for the given ID, or ErrNotFound.
func (s *EncryptedStore) Get(ctx context.Context, id string) (*Session, error) {
	sealed, err := s.kv.Get(ctx, s.prefix+id)
	if err != nil {
		if errors.Is(err, errKeyMissing) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(sealed) < s.aead.NonceSize() {
		return nil, fmt.Errorf("sealed session %s is truncated", id)
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	body, err := s.aead.Open(nil, nonce, ciphertext, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed session %s: %w", id, err)
	}
	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	return &sess, nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *EncryptedStore) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, s.prefix+id)
}

// Package identity keeps the anonymous user identifier and the optional
// contact email across runs.
package identity

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	KeyUserID    = "userId"
	KeyUserEmail = "userEmail"

	userIDPrefix = "user_"
	userIDLength = 9
)

// idSpace is 36^9, the number of distinct 9 character base36 suffixes.
const idSpace uint64 = 101559956668416

// Identity reads and writes the session identity through a Store.
type Identity struct {
	mu    sync.Mutex
	store Store
	newID func() string
}

// New wraps store.
func New(store Store) *Identity {
	return &Identity{store: store, newID: NewUserID}
}

// GetOrCreateUserID returns the persisted user id, generating and storing
// one on first use.
func (i *Identity) GetOrCreateUserID() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	id, ok, err := i.store.Get(KeyUserID)
	if err != nil {
		return "", fmt.Errorf("read user id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = i.newID()
	if err := i.store.Set(KeyUserID, id); err != nil {
		return "", fmt.Errorf("persist user id: %w", err)
	}
	return id, nil
}

// UserEmail returns the stored email if one was saved.
func (i *Identity) UserEmail() (string, bool) {
	email, ok, err := i.store.Get(KeyUserEmail)
	if err != nil || !ok || email == "" {
		return "", false
	}
	return email, true
}

// SetUserEmail stores email when it looks like an address. Rejected input
// leaves the store untouched and reports false.
func (i *Identity) SetUserEmail(email string) (bool, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return false, nil
	}
	if err := i.store.Set(KeyUserEmail, email); err != nil {
		return false, fmt.Errorf("persist user email: %w", err)
	}
	return true, nil
}

// ValidEmail is the only check applied to a user supplied email.
func ValidEmail(email string) bool {
	return strings.Contains(email, "@")
}

// NewUserID generates "user_" followed by 9 lowercase base36 characters.
func NewUserID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8]) % idSpace
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < userIDLength {
		suffix = strings.Repeat("0", userIDLength-len(suffix)) + suffix
	}
	return userIDPrefix + suffix
}

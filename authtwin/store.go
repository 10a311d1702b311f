package authtwin

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken = errors.New("email already registered")
	errNotFound   = errors.New("not found")
)

// User is an account held by the twin.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
}

// MemoryStore holds accounts and pending password resets in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]*User
	byID    map[string]*User
	resets  map[string]string // userID -> secret
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]*User),
		byID:    make(map[string]*User),
		resets:  make(map[string]string),
	}
}

// Create adds an account. Emails are compared case-insensitively.
func (s *MemoryStore) Create(name, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.byEmail[key]; exists {
		return nil, errEmailTaken
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	s.byEmail[key] = u
	s.byID[u.ID] = u
	return u, nil
}

// Authenticate returns the account if the password matches.
func (s *MemoryStore) Authenticate(email, password string) (*User, error) {
	s.mu.RLock()
	u, exists := s.byEmail[strings.ToLower(email)]
	s.mu.RUnlock()
	if !exists {
		return nil, errNotFound
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, errNotFound
	}
	return u, nil
}

// Get returns the account with the given ID.
func (s *MemoryStore) Get(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, exists := s.byID[id]
	if !exists {
		return nil, errNotFound
	}
	return u, nil
}

// StartReset issues a reset secret for email. It reports false if there is
// no such account.
func (s *MemoryStore) StartReset(email string) (userID, secret string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.byEmail[strings.ToLower(email)]
	if !exists {
		return "", "", false
	}
	secret = uuid.NewString()
	s.resets[u.ID] = secret
	return u.ID, secret, true
}

// CompleteReset sets a new password if secret matches the pending reset.
func (s *MemoryStore) CompleteReset(userID, secret, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pending, exists := s.resets[userID]
	if !exists || pending != secret {
		return errNotFound
	}
	s.byID[userID].PasswordHash = hash
	delete(s.resets, userID)
	return nil
}

// Count returns the number of accounts.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

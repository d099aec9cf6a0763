package credstore

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-process Store, used by tests (cmd/server always opens
// the Postgres store). It implements the same Result semantics as
// postgresStore without a database round trip.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	byName map[string]memAccount
}

type memAccount struct {
	userID   uint64
	password string // bcrypt hash
}

// NewMemStore returns a Store with no registered accounts.
func NewMemStore() Store {
	return &memStore{byName: make(map[string]memAccount)}
}

func (s *memStore) Query(name string) (uint64, Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byName[name]
	if !ok {
		return 0, ResultNotFound
	}
	return acc.userID, ResultOK
}

func (s *memStore) Login(name, password string) (uint64, Result) {
	s.mu.Lock()
	acc, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return 0, ResultNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.password), []byte(password)) != nil {
		return 0, ResultPasswordIncorrect
	}
	return acc.userID, ResultOK
}

func (s *memStore) Register(name, password string) (uint64, Result) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, ResultServerError
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[name]; exists {
		return 0, ResultAlreadyExists
	}
	s.nextID++
	s.byName[name] = memAccount{userID: s.nextID, password: string(hashed)}
	return s.nextID, ResultOK
}

func (s *memStore) Update(name, oldPassword, newPassword string) (uint64, Result) {
	userID, result := s.Login(name, oldPassword)
	if result != ResultOK {
		return 0, result
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, ResultServerError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[name] = memAccount{userID: userID, password: string(hashed)}
	return userID, ResultOK
}

func (s *memStore) Close() error { return nil }

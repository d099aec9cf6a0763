// Package credstore implements the credential store contract of spec.md
// section 6.5 against PostgreSQL. It generalizes the teacher's stubbed
// DBCacheLayer (internal/game/db_cache_layer.go in the original tree, never
// wired to an actual database) into a real, used store.
package credstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/wuziqi-io/gomoku-server/internal/logging"
)

// Result is the outcome of a store operation, modeling spec.md section
// 6.5's `{password, user_id} | NotFound | ServerError` style variants as a
// single comparable enum plus a UserID payload.
type Result byte

const (
	ResultOK Result = iota
	ResultNotFound
	ResultAlreadyExists
	ResultPasswordIncorrect
	ResultServerError
)

var ErrNotOpen = errors.New("credstore: not open")

// Store is the credential store contract: query/login/register/update,
// each returning a Result plus the user id assigned on success.
type Store interface {
	// Query reports only whether name is registered, without checking a
	// password. CreateAccount's AlreadyExists outcome comes from Register,
	// not from Query.
	Query(name string) (userID uint64, result Result)
	// Login verifies name/password against the stored bcrypt hash.
	Login(name, password string) (userID uint64, result Result)
	Register(name, password string) (userID uint64, result Result)
	Update(name, oldPassword, newPassword string) (userID uint64, result Result)
	Close() error
}

// postgresStore is the production Store, backed by a single table:
//
//	CREATE TABLE accounts (
//	    user_id    BIGSERIAL PRIMARY KEY,
//	    name       TEXT UNIQUE NOT NULL,
//	    password   TEXT NOT NULL
//	);
type postgresStore struct {
	db *sql.DB
}

// Open dials dsn (a postgres:// connection string) and verifies it with a
// ping before returning. Matches the teacher's DBCacheLayer.Start shape,
// but actually establishes the connection instead of logging a TODO.
func Open(dsn string) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("credstore: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("credstore: ping: %w", err)
	}
	logging.For("credstore").Info("connected to credential store")
	return &postgresStore{db: db}, nil
}

func (s *postgresStore) Query(name string) (uint64, Result) {
	var userID uint64
	var hashed string
	row := s.db.QueryRow(`SELECT user_id, password FROM accounts WHERE name = $1`, name)
	if err := row.Scan(&userID, &hashed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ResultNotFound
		}
		logging.For("credstore").Error("query failed", "err", err)
		return 0, ResultServerError
	}
	return userID, ResultOK
}

func (s *postgresStore) Login(name, password string) (uint64, Result) {
	var userID uint64
	var hashed string
	row := s.db.QueryRow(`SELECT user_id, password FROM accounts WHERE name = $1`, name)
	if err := row.Scan(&userID, &hashed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ResultNotFound
		}
		logging.For("credstore").Error("login lookup failed", "err", err)
		return 0, ResultServerError
	}
	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) != nil {
		return 0, ResultPasswordIncorrect
	}
	return userID, ResultOK
}

func (s *postgresStore) Register(name, password string) (uint64, Result) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logging.For("credstore").Error("hash failed", "err", err)
		return 0, ResultServerError
	}

	var userID uint64
	row := s.db.QueryRow(
		`INSERT INTO accounts (name, password) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING
		 RETURNING user_id`,
		name, string(hashed),
	)
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ResultAlreadyExists
		}
		logging.For("credstore").Error("register failed", "err", err)
		return 0, ResultServerError
	}
	return userID, ResultOK
}

func (s *postgresStore) Update(name, oldPassword, newPassword string) (uint64, Result) {
	userID, result := s.Login(name, oldPassword)
	if result != ResultOK {
		return 0, result
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.For("credstore").Error("hash failed", "err", err)
		return 0, ResultServerError
	}
	if _, err := s.db.Exec(`UPDATE accounts SET password = $1 WHERE user_id = $2`, string(hashed), userID); err != nil {
		logging.For("credstore").Error("update failed", "err", err)
		return 0, ResultServerError
	}
	return userID, ResultOK
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}

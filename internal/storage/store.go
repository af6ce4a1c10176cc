package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	settingsBucket   = []byte("settings")
	statementsBucket = []byte("statements")
)

var (
	// ErrNotSet is returned for a setting that was never stored.
	ErrNotSet = errors.New("setting not set")
	// ErrNotFound is returned for a statement that is not cached.
	ErrNotFound = errors.New("not found")
)

const defaultTimeout = 1 * time.Second

type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the database at dbPath. timeout bounds the wait
// for the file lock held by another kn process; zero uses one second.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{settingsBucket, statementsBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get decodes the setting into v.
func (s *Store) Get(key Setting, v any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(settingsBucket).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s: %w", key, ErrNotSet)
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
		return nil
	})
}

func (s *Store) Set(key Setting, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Put([]byte(key), data)
	})
}

// Delete removes a setting. Deleting an unset setting is not an error.
func (s *Store) Delete(key Setting) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Delete([]byte(key))
	})
}

// String returns a string setting.
func (s *Store) String(key Setting) (string, error) {
	var v string
	if err := s.Get(key, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Token() (string, error) {
	return s.String(SettingToken)
}

func (s *Store) SetToken(token string) error {
	return s.Set(SettingToken, token)
}

func (s *Store) DeleteToken() error {
	return s.Delete(SettingToken)
}

func (s *Store) SetLastProblem(id uint64, name string) error {
	return s.Set(SettingLastProblem, &LastProblem{ID: id, Name: name, ViewedAt: time.Now()})
}

func (s *Store) LastProblem() (*LastProblem, error) {
	var p LastProblem
	if err := s.Get(SettingLastProblem, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func statementKey(id uint64) []byte {
	return []byte(strconv.FormatUint(id, 10))
}

// SaveStatement caches a statement, replacing any earlier copy of the same
// problem.
func (s *Store) SaveStatement(st *Statement) error {
	if st.FetchedAt.IsZero() {
		st.FetchedAt = time.Now()
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(statementsBucket).Put(statementKey(st.ProblemID), data)
	})
}

func (s *Store) GetStatement(id uint64) (*Statement, error) {
	var st Statement
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(statementsBucket).Get(statementKey(id))
		if data == nil {
			return fmt.Errorf("statement %d: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &st)
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStatements returns cached statements, most recently fetched first.
// A limit of zero or less returns all of them.
func (s *Store) ListStatements(limit int) ([]*Statement, error) {
	var statements []*Statement
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(statementsBucket).ForEach(func(_ []byte, v []byte) error {
			var st Statement
			if err := json.Unmarshal(v, &st); err != nil {
				return nil
			}
			statements = append(statements, &st)
			return nil
		})
	})
	sort.Slice(statements, func(i, j int) bool {
		return statements[i].FetchedAt.After(statements[j].FetchedAt)
	})
	if limit > 0 && len(statements) > limit {
		statements = statements[:limit]
	}
	return statements, err
}

func (s *Store) DeleteStatement(id uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(statementsBucket).Delete(statementKey(id))
	})
}

// Package docstore is an embedded document store used as the catalog export
// target. Documents are JSON values kept in badger under per-operator keys:
//
//	identities/{email}
//	users/{uid}
//	users/{uid}/{collection}/{docID}
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultMeasurementUnit = "ml"
	DefaultCurrency        = "USD"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidEmail = errors.New("email is required")
)

type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's internal logs. Nil disables them.
	Logger *zap.Logger
}

type Store struct {
	db  *badger.DB
	now func() time.Time
}

// badgerLogger adapts zap to badger's Logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(strings.TrimSpace(format), args...)
}

func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent document store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create document store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Identity is an external account documents are exported under.
// TemporaryCredential is only set when the identity was created by the call
// that returned it; it is never stored in plain text.
type Identity struct {
	UID                 string
	Email               string
	DisplayName         string
	TemporaryCredential string
	Created             bool
}

type identityRecord struct {
	UID            string    `json:"uid"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	CredentialHash []byte    `json:"credentialHash"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Settings are the per-operator defaults stored on the profile.
type Settings struct {
	DefaultMeasurementUnit string `json:"defaultMeasurementUnit"`
	Currency               string `json:"currency"`
}

type Profile struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Settings    Settings  `json:"settings"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document is one stored value of a collection.
type Document struct {
	ID   string
	Data json.RawMessage
}

func identityKey(email string) []byte {
	return []byte("identities/" + email)
}

func userKey(uid string) []byte {
	return []byte("users/" + uid)
}

func collectionPrefix(uid, collection string) []byte {
	return []byte("users/" + uid + "/" + collection + "/")
}

func documentKey(uid, collection, docID string) []byte {
	return append(collectionPrefix(uid, collection), docID...)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IssueIdentity returns the identity registered for email, creating it with
// a fresh uid and temporary credential when none exists.
func (s *Store) IssueIdentity(ctx context.Context, email, displayName string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	email = normalizeEmail(email)
	if email == "" {
		return Identity{}, ErrInvalidEmail
	}

	var identity Identity
	err := s.db.Update(func(txn *badger.Txn) error {
		var existing identityRecord
		err := getJSON(txn, identityKey(email), &existing)
		if err == nil {
			identity = Identity{UID: existing.UID, Email: existing.Email, DisplayName: existing.DisplayName}
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		credential := uuid.NewString()
		hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash temporary credential: %w", err)
		}
		record := identityRecord{
			UID:            uuid.NewString(),
			Email:          email,
			DisplayName:    displayName,
			CredentialHash: hash,
			CreatedAt:      s.now().UTC(),
		}
		if err := setJSON(txn, identityKey(email), record); err != nil {
			return err
		}
		identity = Identity{
			UID:                 record.UID,
			Email:               record.Email,
			DisplayName:         record.DisplayName,
			TemporaryCredential: credential,
			Created:             true,
		}
		return nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("issue identity for %s: %w", email, err)
	}
	return identity, nil
}

// VerifyCredential reports whether credential matches the one issued for email.
func (s *Store) VerifyCredential(ctx context.Context, email, credential string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var record identityRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, identityKey(normalizeEmail(email)), &record)
	})
	if err != nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword(record.CredentialHash, []byte(credential)) == nil, nil
}

// PutProfile writes the profile document for identity with default settings.
func (s *Store) PutProfile(ctx context.Context, identity Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	profile := Profile{
		UserID:      identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Settings: Settings{
			DefaultMeasurementUnit: DefaultMeasurementUnit,
			Currency:               DefaultCurrency,
		},
		CreatedAt: s.now().UTC(),
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, userKey(identity.UID), profile)
	})
}

func (s *Store) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var profile Profile
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(uid), &profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// NewDocID returns an id for a document that has not been written yet.
func (s *Store) NewDocID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Put stores doc as JSON, replacing any previous value under the same id.
func (s *Store) Put(ctx context.Context, uid, collection, docID string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, documentKey(uid, collection, docID), doc)
	})
}

// Get decodes the stored document into dst, or returns ErrNotFound.
func (s *Store) Get(ctx context.Context, uid, collection, docID string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, documentKey(uid, collection, docID), dst)
	})
}

// List returns every document of a collection in key order.
func (s *Store) List(ctx context.Context, uid, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := collectionPrefix(uid, collection)
	var docs []Document
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			docs = append(docs, Document{
				ID:   string(item.Key()[len(prefix):]),
				Data: data,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

func getJSON(txn *badger.Txn, key []byte, dst any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set(key, data)
}

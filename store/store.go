// Package store persists events, sessions, rules and assignments in a
// BoltDB database.
package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/werk/internal/apperr"
	"github.com/ayoisaiah/werk/internal/timeutil"
)

// Top-level buckets. Events and sessions hold one nested bucket per user,
// keyed by start time followed by the record id.
const (
	eventBucket      = "events"
	sessionBucket    = "sessions"
	ruleBucket       = "rules"
	assignmentBucket = "assignments"
	indexBucket      = "index"
	metaBucket       = "meta"
)

var (
	errWerkRunning = &apperr.Error{
		Message: "is werk already running? Only one instance can use the database at a time",
	}

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = &apperr.Error{
		Message: "%s %d not found",
	}

	errMissingUser = &apperr.Error{
		Message: "event at position %d has no user id",
	}

	errUnknownTargetKind = &apperr.Error{
		Message: "unknown assignment target %q",
	}

	errCorruptIndex = &apperr.Error{
		Message: "index entry for %s %d is malformed",
	}
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

// NewClient opens (or creates) the database at dbPath and makes sure every
// bucket exists.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	c := &Client{
		db,
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{
			eventBucket,
			sessionBucket,
			ruleBucket,
			assignmentBucket,
			metaBucket,
		} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return c.migrate(tx)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

// open creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errWerkRunning
		}

		return nil, err
	}

	return db, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)

	return b
}

// recordKey orders records by start time, then id.
func recordKey(start time.Time, id uint64) []byte {
	return append(timeutil.ToKey(start), itob(id)...)
}

// inRange reports whether the time part of k is not later than max.
func inRange(k, maxKey []byte) bool {
	if len(k) < timeutil.KeyLen {
		return false
	}

	return bytes.Compare(k[:timeutil.KeyLen], maxKey) <= 0
}

// indexValue locates a record: the user bucket and the key inside it.
func indexValue(user string, key []byte) []byte {
	v := make([]byte, 0, len(user)+1+len(key))
	v = append(v, user...)
	v = append(v, 0)

	return append(v, key...)
}

func splitIndexValue(v []byte) (user string, key []byte, ok bool) {
	i := bytes.IndexByte(v, 0)
	if i < 0 {
		return "", nil, false
	}

	return string(v[:i]), v[i+1:], true
}

// index returns the id index bucket for kind, creating it when tx is
// writable.
func index(tx *bolt.Tx, kind string) (*bolt.Bucket, error) {
	if !tx.Writable() {
		idx := tx.Bucket([]byte(indexBucket))
		if idx == nil {
			return nil, nil
		}

		return idx.Bucket([]byte(kind)), nil
	}

	idx, err := tx.CreateBucketIfNotExists([]byte(indexBucket))
	if err != nil {
		return nil, err
	}

	return idx.CreateBucketIfNotExists([]byte(kind))
}

// lookup finds the user bucket and key of the record with id.
func lookup(
	tx *bolt.Tx,
	kind string,
	id uint64,
) (userBucket *bolt.Bucket, key []byte, err error) {
	idx, err := index(tx, kind)
	if err != nil {
		return nil, nil, err
	}

	if idx == nil {
		return nil, nil, ErrNotFound.Fmt(singular(kind), id)
	}

	v := idx.Get(itob(id))
	if v == nil {
		return nil, nil, ErrNotFound.Fmt(singular(kind), id)
	}

	user, key, ok := splitIndexValue(v)
	if !ok {
		return nil, nil, errCorruptIndex.Fmt(singular(kind), id)
	}

	userBucket = tx.Bucket([]byte(kind)).Bucket([]byte(user))
	if userBucket == nil || userBucket.Get(key) == nil {
		return nil, nil, ErrNotFound.Fmt(singular(kind), id)
	}

	return userBucket, key, nil
}

func singular(kind string) string {
	return kind[:len(kind)-1]
}

func getJSON[T any](b *bolt.Bucket, key []byte) (*T, error) {
	var v T

	if err := json.Unmarshal(b.Get(key), &v); err != nil {
		return nil, err
	}

	return &v, nil
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return b.Put(key, data)
}

// view runs fn in a read-only transaction unless ctx is already done.
func (c *Client) view(ctx context.Context, fn func(*bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.View(fn)
}

// update runs fn in a read-write transaction unless ctx is already done.
func (c *Client) update(ctx context.Context, fn func(*bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.Update(fn)
}

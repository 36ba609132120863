package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	"go.etcd.io/bbolt"

	"github.com/ayoisaiah/werk/internal/models"
)

// schemaVersion is bumped whenever the layout of stored records changes.
const schemaVersion uint64 = 1

var schemaVersionKey = []byte("schema_version")

// record is the part of an event or session needed to rebuild its key.
type record interface {
	models.RawEvent | models.Session
}

func recordKeyOf[T record](v []byte) ([]byte, error) {
	var r T

	if err := json.Unmarshal(v, &r); err != nil {
		return nil, err
	}

	switch rec := any(&r).(type) {
	case *models.RawEvent:
		return recordKey(rec.Start, rec.ID), nil
	case *models.Session:
		return recordKey(rec.StartTime, rec.ID), nil
	}

	return nil, nil
}

// rekey rewrites every record of kind under its canonical key and rebuilds
// the id index from scratch.
func rekey[T record](tx *bbolt.Tx, kind string) error {
	idxRoot, err := tx.CreateBucketIfNotExists([]byte(indexBucket))
	if err != nil {
		return err
	}

	if idxRoot.Bucket([]byte(kind)) != nil {
		if err = idxRoot.DeleteBucket([]byte(kind)); err != nil {
			return err
		}
	}

	idx, err := idxRoot.CreateBucket([]byte(kind))
	if err != nil {
		return err
	}

	root := tx.Bucket([]byte(kind))

	var users [][]byte

	err = root.ForEachBucket(func(user []byte) error {
		users = append(users, bytes.Clone(user))
		return nil
	})
	if err != nil {
		return err
	}

	for _, user := range users {
		bucket := root.Bucket(user)

		type entry struct {
			oldKey, newKey, value []byte
		}

		var entries []entry

		cur := bucket.Cursor()

		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			newKey, err := recordKeyOf[T](v)
			if err != nil {
				return err
			}

			entries = append(entries, entry{
				oldKey: bytes.Clone(k),
				newKey: newKey,
				value:  bytes.Clone(v),
			})
		}

		// delete every moved record before writing any, so that a new key
		// never collides with an old one that is about to go away
		for _, e := range entries {
			if !bytes.Equal(e.oldKey, e.newKey) {
				if err := bucket.Delete(e.oldKey); err != nil {
					return err
				}
			}
		}

		for _, e := range entries {
			if err := bucket.Put(e.newKey, e.value); err != nil {
				return err
			}

			id := e.newKey[len(e.newKey)-8:]

			if err := idx.Put(id, indexValue(string(user), e.newKey)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Client) migrate(tx *bbolt.Tx) error {
	meta := tx.Bucket([]byte(metaBucket))

	var current uint64

	if v := meta.Get(schemaVersionKey); len(v) == 8 {
		current = binary.BigEndian.Uint64(v)
	}

	if current >= schemaVersion {
		return nil
	}

	if err := rekey[models.RawEvent](tx, eventBucket); err != nil {
		return err
	}

	if err := rekey[models.Session](tx, sessionBucket); err != nil {
		return err
	}

	return meta.Put(schemaVersionKey, itob(schemaVersion))
}

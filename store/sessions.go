package store

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/timeutil"
)

// sessionsIn returns the sessions of one user bucket that start within
// [start, end].
func sessionsIn(b *bolt.Bucket, start, end time.Time) ([]models.Session, error) {
	var sessions []models.Session

	cur := b.Cursor()
	maxKey := timeutil.ToKey(end)

	for k, v := cur.Seek(timeutil.ToKey(start)); k != nil && inRange(k, maxKey); k, v = cur.Next() {
		var sess models.Session

		if err := json.Unmarshal(v, &sess); err != nil {
			return nil, err
		}

		sessions = append(sessions, sess)
	}

	return sessions, nil
}

func (c *Client) Sessions(
	ctx context.Context,
	user string,
	start, end time.Time,
) ([]models.Session, error) {
	var sessions []models.Session

	err := c.view(ctx, func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(sessionBucket))

		if user != "" {
			b := root.Bucket([]byte(user))
			if b == nil {
				return nil
			}

			var err error

			sessions, err = sessionsIn(b, start, end)

			return err
		}

		err := root.ForEachBucket(func(k []byte) error {
			s, err := sessionsIn(root.Bucket(k), start, end)
			if err != nil {
				return err
			}

			sessions = append(sessions, s...)

			return nil
		})
		if err != nil {
			return err
		}

		slices.SortStableFunc(sessions, func(a, b models.Session) int {
			return a.StartTime.Compare(b.StartTime)
		})

		return nil
	})

	return sessions, err
}

func (c *Client) Session(ctx context.Context, id uint64) (*models.Session, error) {
	var sess *models.Session

	err := c.view(ctx, func(tx *bolt.Tx) error {
		b, key, err := lookup(tx, sessionBucket, id)
		if err != nil {
			return err
		}

		sess, err = getJSON[models.Session](b, key)

		return err
	})

	return sess, err
}

// deleteStarting removes the sessions of b that start within [start, end]
// together with their index entries and assignments. It selects sessions the
// same way Events selects the events they are rebuilt from.
func deleteStarting(
	tx *bolt.Tx,
	b *bolt.Bucket,
	start, end time.Time,
) (int, error) {
	sessions, err := sessionsIn(b, start, end)
	if err != nil {
		return 0, err
	}

	idx, err := index(tx, sessionBucket)
	if err != nil {
		return 0, err
	}

	assignments := tx.Bucket([]byte(assignmentBucket))

	var removed int

	for i := range sessions {
		sess := &sessions[i]

		if err := b.Delete(recordKey(sess.StartTime, sess.ID)); err != nil {
			return removed, err
		}

		if err := idx.Delete(itob(sess.ID)); err != nil {
			return removed, err
		}

		if sess.AssignmentID != 0 {
			if err := assignments.Delete(itob(sess.AssignmentID)); err != nil {
				return removed, err
			}
		}

		removed++
	}

	return removed, nil
}

func (c *Client) ReplaceSessions(
	ctx context.Context,
	user string,
	start, end time.Time,
	sessions []models.Session,
) (stored []models.Session, removed int, err error) {
	err = c.update(ctx, func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(sessionBucket))

		b, err := root.CreateBucketIfNotExists([]byte(user))
		if err != nil {
			return err
		}

		removed, err = deleteStarting(tx, b, start, end)
		if err != nil {
			return err
		}

		idx, err := index(tx, sessionBucket)
		if err != nil {
			return err
		}

		stored = make([]models.Session, len(sessions))

		for i := range sessions {
			sess := sessions[i]

			sess.UserID = user
			sess.AssignmentID = 0

			sess.ID, err = root.NextSequence()
			if err != nil {
				return err
			}

			key := recordKey(sess.StartTime, sess.ID)

			if err = putJSON(b, key, &sess); err != nil {
				return err
			}

			if err = idx.Put(itob(sess.ID), indexValue(user, key)); err != nil {
				return err
			}

			stored[i] = sess
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return stored, removed, nil
}

func (c *Client) DeleteSessions(
	ctx context.Context,
	user string,
	start, end time.Time,
) (int, error) {
	var removed int

	err := c.update(ctx, func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(sessionBucket))

		users := []string{user}

		if user == "" {
			users = users[:0]

			_ = root.ForEachBucket(func(k []byte) error {
				users = append(users, string(k))
				return nil
			})
		}

		for _, u := range users {
			b := root.Bucket([]byte(u))
			if b == nil {
				continue
			}

			n, err := deleteStarting(tx, b, start, end)
			if err != nil {
				return err
			}

			removed += n
		}

		return nil
	})

	return removed, err
}

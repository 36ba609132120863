package store

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/timeutil"
)

func (c *Client) AddEvents(
	ctx context.Context,
	events []models.RawEvent,
) (int, error) {
	var added int

	err := c.update(ctx, func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(eventBucket))

		idx, err := index(tx, eventBucket)
		if err != nil {
			return err
		}

		for i := range events {
			ev := events[i]

			if ev.UserID == "" {
				return errMissingUser.Fmt(i)
			}

			if ev.ID == 0 {
				ev.ID, err = root.NextSequence()
				if err != nil {
					return err
				}
			} else if ev.ID > root.Sequence() {
				if err = root.SetSequence(ev.ID); err != nil {
					return err
				}
			}

			// drop the stored copy, its start time may have changed
			if prev := idx.Get(itob(ev.ID)); prev != nil {
				user, key, ok := splitIndexValue(prev)
				if ok {
					if b := root.Bucket([]byte(user)); b != nil {
						if err = b.Delete(key); err != nil {
							return err
						}
					}
				}
			} else {
				added++
			}

			var b *bolt.Bucket

			b, err = root.CreateBucketIfNotExists([]byte(ev.UserID))
			if err != nil {
				return err
			}

			key := recordKey(ev.Start, ev.ID)

			if err = putJSON(b, key, &ev); err != nil {
				return err
			}

			if err = idx.Put(itob(ev.ID), indexValue(ev.UserID, key)); err != nil {
				return err
			}

			events[i].ID = ev.ID
		}

		return nil
	})

	return added, err
}

func (c *Client) Events(
	ctx context.Context,
	user string,
	start, end time.Time,
) ([]models.RawEvent, error) {
	var events []models.RawEvent

	err := c.view(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(eventBucket)).Bucket([]byte(user))
		if b == nil {
			return nil
		}

		cur := b.Cursor()
		maxKey := timeutil.ToKey(end)

		for k, v := cur.Seek(timeutil.ToKey(start)); k != nil && inRange(k, maxKey); k, v = cur.Next() {
			var ev models.RawEvent

			if err := json.Unmarshal(v, &ev); err != nil {
				return err
			}

			events = append(events, ev)
		}

		return nil
	})

	return events, err
}

func (c *Client) Event(ctx context.Context, id uint64) (*models.RawEvent, error) {
	var ev *models.RawEvent

	err := c.view(ctx, func(tx *bolt.Tx) error {
		b, key, err := lookup(tx, eventBucket, id)
		if err != nil {
			return err
		}

		ev, err = getJSON[models.RawEvent](b, key)

		return err
	})

	return ev, err
}

func (c *Client) Users(ctx context.Context) ([]string, error) {
	var users []string

	err := c.view(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(eventBucket)).ForEachBucket(func(k []byte) error {
			users = append(users, string(k))
			return nil
		})
	})

	return users, err
}

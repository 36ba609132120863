package store

import (
	"bytes"
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/werk/internal/models"
)

func (c *Client) Rules(ctx context.Context) ([]models.AssignmentRule, error) {
	var rules []models.AssignmentRule

	err := c.view(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ruleBucket)).ForEach(func(_, v []byte) error {
			var r models.AssignmentRule

			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}

			rules = append(rules, r)

			return nil
		})
	})

	return rules, err
}

func (c *Client) SaveRule(ctx context.Context, rule *models.AssignmentRule) error {
	return c.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ruleBucket))

		if rule.ID == 0 {
			id, err := b.NextSequence()
			if err != nil {
				return err
			}

			rule.ID = id
		} else if rule.ID > b.Sequence() {
			if err := b.SetSequence(rule.ID); err != nil {
				return err
			}
		}

		return putJSON(b, itob(rule.ID), rule)
	})
}

func (c *Client) DeleteRule(ctx context.Context, id uint64) error {
	return c.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ruleBucket))

		if b.Get(itob(id)) == nil {
			return ErrNotFound.Fmt("rule", id)
		}

		return b.Delete(itob(id))
	})
}

func (c *Client) SaveAssignment(ctx context.Context, a *models.Assignment) error {
	return c.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(assignmentBucket))

		switch a.Kind {
		case models.TargetSession:
			return saveSessionAssignment(tx, b, a)
		case models.TargetEvent:
			if _, _, err := lookup(tx, eventBucket, a.TargetID); err != nil {
				return err
			}

			if err := deleteEventAssignments(b, a.TargetID); err != nil {
				return err
			}

			return putAssignment(b, a)
		default:
			return errUnknownTargetKind.Fmt(a.Kind)
		}
	})
}

func putAssignment(b *bolt.Bucket, a *models.Assignment) error {
	id, err := b.NextSequence()
	if err != nil {
		return err
	}

	a.ID = id

	return putJSON(b, itob(a.ID), a)
}

func saveSessionAssignment(
	tx *bolt.Tx,
	b *bolt.Bucket,
	a *models.Assignment,
) error {
	sessions, key, err := lookup(tx, sessionBucket, a.TargetID)
	if err != nil {
		return err
	}

	sess, err := getJSON[models.Session](sessions, key)
	if err != nil {
		return err
	}

	if sess.AssignmentID != 0 {
		if err = b.Delete(itob(sess.AssignmentID)); err != nil {
			return err
		}
	}

	if err = putAssignment(b, a); err != nil {
		return err
	}

	sess.AssignmentID = a.ID

	// the key is only valid for the life of the transaction, and Put may
	// reuse its memory
	return putJSON(sessions, bytes.Clone(key), sess)
}

// deleteEventAssignments removes every assignment of the event with id.
func deleteEventAssignments(b *bolt.Bucket, id uint64) error {
	var stale [][]byte

	err := b.ForEach(func(k, v []byte) error {
		var a models.Assignment

		if err := json.Unmarshal(v, &a); err != nil {
			return err
		}

		if a.Kind == models.TargetEvent && a.TargetID == id {
			stale = append(stale, bytes.Clone(k))
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) Assignment(
	ctx context.Context,
	id uint64,
) (*models.Assignment, error) {
	var a *models.Assignment

	err := c.view(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(assignmentBucket))

		if b.Get(itob(id)) == nil {
			return ErrNotFound.Fmt("assignment", id)
		}

		var err error

		a, err = getJSON[models.Assignment](b, itob(id))

		return err
	})

	return a, err
}

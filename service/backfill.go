package service

import (
	"context"
	"sort"

	"github.com/maruel/natural"
	"golang.org/x/sync/errgroup"
)

// Backfill recomputes the last days days for user, or for every user with
// stored events when user is empty. Users are processed concurrently, at
// most backfill.workers at a time. The reports are ordered by user.
func (s *Service) Backfill(
	ctx context.Context,
	user string,
	days int,
) ([]*Report, error) {
	if days <= 0 {
		days = s.cfg.Backfill.Days
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)

	users := []string{user}

	if user == "" {
		var err error

		users, err = s.db.Users(ctx)
		if err != nil {
			return nil, err
		}

		sort.Sort(natural.StringSlice(users))
	}

	workers := max(s.cfg.Backfill.Workers, 1)

	reports := make([]*Report, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, u := range users {
		g.Go(func() error {
			r, err := s.Recompute(gctx, u, start, end)
			if err != nil {
				return err
			}

			reports[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}

package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mytrip/internal/domain"
)

// all runs every task concurrently and waits for all of them. Tasks record
// their own outcome and never fail the group, so none can cancel a sibling.
func all(ctx context.Context, tasks ...func(context.Context)) {
	var g errgroup.Group
	for _, task := range tasks {
		g.Go(func() error {
			task(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

// each calls fn for every index in [0,n) with at most limit calls in
// flight. limit <= 0 means unbounded.
func each(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

// PlaceholderTitle stands in for a site whose detail could not be loaded.
func PlaceholderTitle(contentID string) string {
	return "관광지 " + contentID
}

// resolveTitles looks up every title concurrently. Slot i always holds the
// title for ids[i]; failed or absent lookups get the placeholder.
func resolveTitles(ctx context.Context, gw domain.TourGateway, ids []string) []string {
	titles := make([]string, len(ids))
	each(ctx, len(ids), 0, func(ctx context.Context, i int) {
		titles[i] = PlaceholderTitle(ids[i])
		d, err := gw.DetailCommon(ctx, ids[i])
		if err != nil || d == nil || d.Title == "" {
			return
		}
		titles[i] = d.Title
	})
	return titles
}

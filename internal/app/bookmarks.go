package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"mytrip/internal/domain"
)

// detailWorkers bounds the bookmark page's detail lookups.
const detailWorkers = 8

// BookmarkService is keyed by the external auth identity. An identity with no
// user row is treated as signed out.
type BookmarkService struct {
	store domain.BookmarkStore
	gw    domain.TourGateway
}

func NewBookmarkService(store domain.BookmarkStore, gw domain.TourGateway) *BookmarkService {
	return &BookmarkService{store: store, gw: gw}
}

func (s *BookmarkService) resolve(ctx context.Context, externalID string) (*domain.User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.store.UserByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

// Add fails with ErrDuplicateBookmark when the pair already exists.
func (s *BookmarkService) Add(ctx context.Context, externalID, contentID string) error {
	u, err := s.resolve(ctx, externalID)
	if err != nil {
		return err
	}
	return s.store.AddBookmark(ctx, u.ID, contentID)
}

// Remove is a no-op when the pair does not exist.
func (s *BookmarkService) Remove(ctx context.Context, externalID, contentID string) error {
	u, err := s.resolve(ctx, externalID)
	if err != nil {
		return err
	}
	return s.store.RemoveBookmark(ctx, u.ID, contentID)
}

func (s *BookmarkService) RemoveMany(ctx context.Context, externalID string, contentIDs []string) error {
	u, err := s.resolve(ctx, externalID)
	if err != nil {
		return err
	}
	if len(contentIDs) == 0 {
		return domain.ErrNothingToRemove
	}
	return s.store.RemoveBookmarks(ctx, u.ID, contentIDs)
}

func (s *BookmarkService) IsBookmarked(ctx context.Context, externalID, contentID string) (bool, error) {
	u, err := s.resolve(ctx, externalID)
	if err != nil {
		return false, err
	}
	return s.store.HasBookmark(ctx, u.ID, contentID)
}

// List returns content ids newest first. The hint only matters once details
// are known, see ListDetailed.
func (s *BookmarkService) List(ctx context.Context, externalID string, _ domain.BookmarkSort) ([]string, error) {
	u, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	bms, err := s.store.ListBookmarks(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(bms))
	for i, b := range bms {
		ids[i] = b.ContentID
	}
	return ids, nil
}

// ListDetailed resolves every bookmark to a card and applies the sort hint.
// Ids whose detail cannot be loaded are left out and reported in Failed.
func (s *BookmarkService) ListDetailed(ctx context.Context, externalID string, sortBy domain.BookmarkSort) (domain.BookmarkedTours, error) {
	ids, err := s.List(ctx, externalID, sortBy)
	if err != nil {
		return domain.BookmarkedTours{}, err
	}

	cards := make([]*domain.TourCard, len(ids))
	each(ctx, len(ids), detailWorkers, func(ctx context.Context, i int) {
		d, err := s.gw.DetailCommon(ctx, ids[i])
		if err != nil || d == nil {
			log.Debug().Str("content_id", ids[i]).Err(err).Msg("bookmark detail unavailable")
			return
		}
		c := toCard(d.TourListItem)
		if c.ContentID == "" {
			c.ContentID = ids[i]
		}
		cards[i] = &c
	})

	out := domain.BookmarkedTours{Items: make([]domain.TourCard, 0, len(ids)), Sort: sortBy}
	for i, c := range cards {
		if c == nil {
			out.Failed = append(out.Failed, ids[i])
			continue
		}
		out.Items = append(out.Items, *c)
	}
	switch sortBy {
	case domain.SortName:
		sortByTitle(out.Items)
	case domain.SortArea:
		sortByArea(out.Items)
	}
	out.TotalCount = len(out.Items)
	if len(out.Failed) > 0 {
		log.Warn().Int("failed", len(out.Failed)).Int("total", len(ids)).Msg("some bookmarks could not be resolved")
	}
	return out, nil
}

package app

import (
	"sort"

	"github.com/paulmach/orb"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mytrip/internal/domain"
	"mytrip/internal/normalize"
)

func toCard(it domain.TourListItem) domain.TourCard {
	c := domain.TourCard{
		ContentID:       it.ContentID,
		ContentTypeID:   it.ContentTypeID,
		ContentTypeName: domain.ContentTypeName(it.ContentTypeID),
		Title:           it.Title,
		Address:         normalize.FormatAddress(it.Addr1, it.Addr2),
		AreaCode:        it.AreaCode,
		Coords:          normalize.ParseCoordinatePair(it.MapX, it.MapY),
		Image:           it.FirstImage,
		Thumbnail:       it.FirstImage2,
	}
	if c.Thumbnail == "" {
		c.Thumbnail = it.FirstImage
	}
	if tel, ok := normalize.SanitizePhone(it.Tel); ok {
		c.Tel = tel
	}
	if t, ok := normalize.ParseProviderTime(it.ModifiedTime); ok {
		c.ModifiedAt = &t
	}
	return c
}

// boundsOf returns the bounding box of the located cards, nil when none are located.
func boundsOf(cards []domain.TourCard) *domain.Bounds {
	var mp orb.MultiPoint
	for _, c := range cards {
		if c.Coords != nil {
			mp = append(mp, orb.Point{c.Coords.Lng, c.Coords.Lat})
		}
	}
	if len(mp) == 0 {
		return nil
	}
	b := mp.Bound()
	return &domain.Bounds{MinLng: b.Min.Lon(), MinLat: b.Min.Lat(), MaxLng: b.Max.Lon(), MaxLat: b.Max.Lat()}
}

// sortByTitle orders cards with Korean collation. A Collator is not safe
// for concurrent use, so each call builds its own.
func sortByTitle(cards []domain.TourCard) {
	col := collate.New(language.Korean)
	sort.SliceStable(cards, func(i, j int) bool {
		return col.CompareString(cards[i].Title, cards[j].Title) < 0
	})
}

// sortByArea orders by address, then title.
func sortByArea(cards []domain.TourCard) {
	col := collate.New(language.Korean)
	sort.SliceStable(cards, func(i, j int) bool {
		if c := col.CompareString(cards[i].Address, cards[j].Address); c != 0 {
			return c < 0
		}
		return col.CompareString(cards[i].Title, cards[j].Title) < 0
	})
}

// sortByModified puts the most recently modified first; undated cards go last.
func sortByModified(cards []domain.TourCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i].ModifiedAt, cards[j].ModifiedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

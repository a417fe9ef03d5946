package app

import (
	"sort"
	"time"

	"mytrip/internal/domain"
)

// trendWindow is how far back a period looks.
func trendWindow(p domain.Period) time.Duration {
	switch p {
	case domain.PeriodWeek:
		return 84 * 24 * time.Hour
	case domain.PeriodMonth:
		return 360 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// bucketKey formats t in zone as a day, the Monday of its week, or its month.
func bucketKey(t time.Time, p domain.Period, zone *time.Location) string {
	t = t.In(zone)
	switch p {
	case domain.PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format("2006-01-02")
	case domain.PeriodMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// bucketize counts timestamps per key. Buckets with no events are absent;
// keys sort lexically, which is chronological for these layouts.
func bucketize(ts []time.Time, p domain.Period, zone *time.Location) []domain.TrendPoint {
	counts := make(map[string]int)
	for _, t := range ts {
		counts[bucketKey(t, p, zone)]++
	}
	out := make([]domain.TrendPoint, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.TrendPoint{Date: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// rankByCount counts occurrences and keeps the top limit. Ties keep the
// order in which ids were first seen.
func rankByCount(ids []string, limit int) []domain.PopularSpot {
	pos := make(map[string]int)
	var out []domain.PopularSpot
	for _, id := range ids {
		if i, ok := pos[id]; ok {
			out[i].BookmarkCount++
			continue
		}
		pos[id] = len(out)
		out = append(out, domain.PopularSpot{ContentID: id, BookmarkCount: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookmarkCount > out[j].BookmarkCount })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

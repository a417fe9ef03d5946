package normalize

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"mytrip/internal/domain"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Seoul is the fixed +9h zone the provider and the statistics use.
var Seoul = time.FixedZone("KST", 9*60*60)

const providerTimeLayout = "20060102150405"

// ParseCoordinate parses a decimal degree string. The provider's reference
// system is used as is.
func ParseCoordinate(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrInvalidCoordinate
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidCoordinate
	}
	return f, nil
}

// ParseCoordinatePair returns nil unless both components parse.
func ParseCoordinatePair(rawLng, rawLat string) *domain.Coords {
	lng, err := ParseCoordinate(rawLng)
	if err != nil {
		return nil
	}
	lat, err := ParseCoordinate(rawLat)
	if err != nil {
		return nil
	}
	return &domain.Coords{Lng: lng, Lat: lat}
}

// ParseProviderTime parses the provider's yyyyMMddHHmmss timestamps.
func ParseProviderTime(raw string) (time.Time, bool) {
	t, err := time.ParseInLocation(providerTimeLayout, strings.TrimSpace(raw), Seoul)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

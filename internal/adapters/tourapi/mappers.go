package tourapi

import (
	"strconv"
	"strings"

	"mytrip/internal/domain"
)

/********** alias registries **********/

// Field names drift between provider revisions; the first non-empty alias wins.
var imageAliases = map[string][]string{
	"original":  {"originimgurl", "originImgUrl"},
	"thumbnail": {"smallimageurl", "smallImageUrl"},
	"name":      {"imgname", "imgName"},
}

var areaAliases = map[string][]string{
	"code": {"code", "areacode"},
	"name": {"name", "areaname"},
}

/********** tiny helpers **********/

// lookupStr returns the value at key as a string. Numbers are formatted
// without exponent so ids sent as JSON numbers survive.
func lookupStr(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, k := range aliases[key] {
		if s := lookupStr(m, k); s != "" {
			return s
		}
	}
	return ""
}

// lookupInt reads a number or a numeric string; 0 when absent.
func lookupInt(m map[string]any, key string) int {
	s := lookupStr(m, key)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

/********** mappers **********/

func mapListItem(m map[string]any) domain.TourListItem {
	return domain.TourListItem{
		ContentID:     lookupStr(m, "contentid"),
		ContentTypeID: lookupStr(m, "contenttypeid"),
		Title:         lookupStr(m, "title"),
		Addr1:         lookupStr(m, "addr1"),
		Addr2:         lookupStr(m, "addr2"),
		AreaCode:      lookupStr(m, "areacode"),
		MapX:          lookupStr(m, "mapx"),
		MapY:          lookupStr(m, "mapy"),
		ModifiedTime:  lookupStr(m, "modifiedtime"),
		FirstImage:    lookupStr(m, "firstimage"),
		FirstImage2:   lookupStr(m, "firstimage2"),
		Tel:           lookupStr(m, "tel"),
		Cat1:          lookupStr(m, "cat1"),
		Cat2:          lookupStr(m, "cat2"),
		Cat3:          lookupStr(m, "cat3"),
		Zipcode:       lookupStr(m, "zipcode"),
	}
}

func mapDetail(m map[string]any) domain.TourDetail {
	return domain.TourDetail{
		TourListItem: mapListItem(m),
		Overview:     lookupStr(m, "overview"),
		Homepage:     lookupStr(m, "homepage"),
		CreatedTime:  lookupStr(m, "createdtime"),
	}
}

// mapOperatingInfo keeps every non-empty field. Keys the domain knows land
// in Known; anything else is preserved in Extra.
func mapOperatingInfo(m map[string]any) *domain.OperatingInfo {
	info := &domain.OperatingInfo{
		ContentID:     lookupStr(m, "contentid"),
		ContentTypeID: lookupStr(m, "contenttypeid"),
	}
	for k := range m {
		if k == "contentid" || k == "contenttypeid" {
			continue
		}
		info.Set(k, lookupStr(m, k))
	}
	return info
}

func mapImage(m map[string]any) domain.TourImage {
	return domain.TourImage{
		OriginalURL:  firstNonEmptyAlias(m, imageAliases, "original"),
		ThumbnailURL: firstNonEmptyAlias(m, imageAliases, "thumbnail"),
		Name:         firstNonEmptyAlias(m, imageAliases, "name"),
	}
}

func mapAreaCode(m map[string]any) domain.AreaCode {
	return domain.AreaCode{
		Code:     firstNonEmptyAlias(m, areaAliases, "code"),
		Name:     firstNonEmptyAlias(m, areaAliases, "name"),
		Sequence: lookupInt(m, "rnum"),
	}
}

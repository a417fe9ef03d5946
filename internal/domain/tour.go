package domain

import "time"

// Content type ids used by the provider.
const (
	ContentTypeTouristSpot = "12"
	ContentTypeCulture     = "14"
	ContentTypeFestival    = "15"
	ContentTypeCourse      = "25"
	ContentTypeLeports     = "28"
	ContentTypeLodging     = "32"
	ContentTypeShopping    = "38"
	ContentTypeRestaurant  = "39"
)

var contentTypeNames = map[string]string{
	ContentTypeTouristSpot: "관광지",
	ContentTypeCulture:     "문화시설",
	ContentTypeFestival:    "축제/행사",
	ContentTypeCourse:      "여행코스",
	ContentTypeLeports:     "레포츠",
	ContentTypeLodging:     "숙박",
	ContentTypeShopping:    "쇼핑",
	ContentTypeRestaurant:  "음식점",
}

type ContentType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ContentTypes lists the catalogue in provider id order.
func ContentTypes() []ContentType {
	ids := []string{
		ContentTypeTouristSpot, ContentTypeCulture, ContentTypeFestival, ContentTypeCourse,
		ContentTypeLeports, ContentTypeLodging, ContentTypeShopping, ContentTypeRestaurant,
	}
	out := make([]ContentType, 0, len(ids))
	for _, id := range ids {
		out = append(out, ContentType{ID: id, Name: contentTypeNames[id]})
	}
	return out
}

// ContentTypeName returns the display name for a content type id ("기타" when unknown).
func ContentTypeName(id string) string {
	if n, ok := contentTypeNames[id]; ok {
		return n
	}
	return "기타"
}

// TourListItem is one row of an area listing or keyword search, as the provider sent it.
type TourListItem struct {
	ContentID     string
	ContentTypeID string
	Title         string
	Addr1         string
	Addr2         string
	AreaCode      string
	MapX          string // longitude
	MapY          string // latitude
	ModifiedTime  string
	FirstImage    string
	FirstImage2   string
	Tel           string
	Cat1          string
	Cat2          string
	Cat3          string
	Zipcode       string
}

// TourDetail is the detailCommon projection of one site.
type TourDetail struct {
	TourListItem
	Overview    string // raw, may contain markup
	Homepage    string // raw anchor markup or bare URL
	CreatedTime string
}

type TourImage struct {
	OriginalURL  string `json:"originalUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Name         string `json:"name"`
}

type AreaCode struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Sequence int    `json:"sequence"`
}

// ListQuery selects a page of tour items. An empty Keyword means an area listing.
type ListQuery struct {
	AreaCode      string
	ContentTypeID string
	Keyword       string
	PageNo        int
	NumOfRows     int
}

type TourPage struct {
	Items      []TourListItem
	TotalCount int
	PageNo     int
	NumOfRows  int
}

// Coords is a WGS84 position as the provider reports it.
type Coords struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// TourCard is the display-ready form of a TourListItem.
type TourCard struct {
	ContentID       string     `json:"contentId"`
	ContentTypeID   string     `json:"contentTypeId"`
	ContentTypeName string     `json:"contentTypeName"`
	Title           string     `json:"title"`
	Address         string     `json:"address"`
	AreaCode        string     `json:"areaCode,omitempty"`
	Coords          *Coords    `json:"coords,omitempty"`
	Image           string     `json:"image,omitempty"`
	Thumbnail       string     `json:"thumbnail,omitempty"`
	Tel             string     `json:"tel,omitempty"`
	ModifiedAt      *time.Time `json:"modifiedAt,omitempty"`
}

// Bounds is the bounding box of the located cards on a page.
type Bounds struct {
	MinLng float64 `json:"minLng"`
	MinLat float64 `json:"minLat"`
	MaxLng float64 `json:"maxLng"`
	MaxLat float64 `json:"maxLat"`
}

type CardPage struct {
	Items      []TourCard `json:"items"`
	TotalCount int        `json:"totalCount"`
	PageNo     int        `json:"pageNo"`
	NumOfRows  int        `json:"numOfRows"`
	TotalPages int        `json:"totalPages"`
	Bounds     *Bounds    `json:"bounds,omitempty"`
}

// TourDetailView is everything the place page shows. Info and Images are
// best-effort and may be absent even when the detail itself loaded.
type TourDetailView struct {
	TourCard
	Overview   string         `json:"overview"`
	Homepage   string         `json:"homepage,omitempty"`
	Zipcode    string         `json:"zipcode,omitempty"`
	Info       *OperatingInfo `json:"info,omitempty"`
	Images     []TourImage    `json:"images"`
	InfoFailed bool           `json:"infoUnavailable,omitempty"`
	ImgsFailed bool           `json:"imagesUnavailable,omitempty"`
}

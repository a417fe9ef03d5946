package tourapi

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"mytrip/internal/domain"
)

const successCode = "0000"

type envelope struct {
	Response *response `json:"response"`

	// alternate error shape: {"resultCode":"..","resultMsg":".."} at the top level
	ResultCode *flexString `json:"resultCode"`
	ResultMsg  flexString  `json:"resultMsg"`
}

type response struct {
	Header *header `json:"header"`
	Body   *body   `json:"body"`
}

type header struct {
	ResultCode flexString `json:"resultCode"`
	ResultMsg  flexString `json:"resultMsg"`
}

type body struct {
	Items      json.RawMessage `json:"items"`
	TotalCount *flexInt        `json:"totalCount"`
	PageNo     *flexInt        `json:"pageNo"`
	NumOfRows  *flexInt        `json:"numOfRows"`
}

type pageMeta struct {
	TotalCount *int
	PageNo     *int
	NumOfRows  *int
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

func (f *flexInt) ptr() *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// decodeEnvelope validates a 2xx body in a fixed order: parseable JSON with
// a known envelope, the alternate error shape, the nested header, then the
// result code. Items come back as a slice whether the provider sent none,
// one object or an array.
func decodeEnvelope(b []byte) ([]map[string]any, pageMeta, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, pageMeta{}, malformed("decode: %v", err)
	}
	if env.Response == nil {
		if env.ResultCode != nil {
			return nil, pageMeta{}, &domain.RejectedError{Code: string(*env.ResultCode), Message: string(env.ResultMsg)}
		}
		return nil, pageMeta{}, malformed("missing response envelope")
	}
	if env.Response.Header == nil {
		return nil, pageMeta{}, malformed("missing response header")
	}
	if code := string(env.Response.Header.ResultCode); code != successCode {
		return nil, pageMeta{}, &domain.RejectedError{Code: code, Message: string(env.Response.Header.ResultMsg)}
	}

	// a success without a body is an empty result
	if env.Response.Body == nil {
		return nil, pageMeta{}, nil
	}
	meta := pageMeta{
		TotalCount: env.Response.Body.TotalCount.ptr(),
		PageNo:     env.Response.Body.PageNo.ptr(),
		NumOfRows:  env.Response.Body.NumOfRows.ptr(),
	}
	items, err := normalizeItems(env.Response.Body.Items)
	if err != nil {
		return nil, pageMeta{}, err
	}
	return items, meta, nil
}

// normalizeItems handles items as "", null, {} or {"item": null|object|array}.
func normalizeItems(raw json.RawMessage) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return nil, nil
	}
	if raw[0] != '{' {
		return nil, malformed("unexpected items value")
	}
	var wrap struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(raw, &wrap); err != nil {
		return nil, malformed("items: %v", err)
	}
	item := bytes.TrimSpace(wrap.Item)
	if len(item) == 0 || string(item) == "null" {
		return nil, nil
	}
	switch item[0] {
	case '[':
		var out []map[string]any
		if err := json.Unmarshal(item, &out); err != nil {
			return nil, malformed("item list: %v", err)
		}
		return out, nil
	case '{':
		var one map[string]any
		if err := json.Unmarshal(item, &one); err != nil {
			return nil, malformed("item: %v", err)
		}
		return []map[string]any{one}, nil
	default:
		return nil, malformed("unexpected item value")
	}
}

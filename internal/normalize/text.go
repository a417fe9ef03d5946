// Package normalize turns raw provider strings into display-ready values.
// Every function here is pure and safe for concurrent use.
package normalize

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// AddressUnavailable is shown when a site has no primary address.
const AddressUnavailable = "주소 정보 없음"

// SanitizeRichText converts line breaks to "\n", drops every other tag and
// unescapes entities. Empty input yields "".
func SanitizeRichText(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// a "<" that never closes is text, not markup
			if z.Err() == io.EOF {
				b.Write(z.Raw())
			}
			out := strings.ReplaceAll(b.String(), "\u00a0", " ")
			return strings.TrimSpace(out)
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte('\n')
			}
		}
	}
}

// ExtractLinkTarget returns the href of an anchor-shaped string. A bare
// absolute URL is returned as is.
func ExtractLinkTarget(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	z := html.NewTokenizer(strings.NewReader(raw))
	for tt := z.Next(); tt != html.ErrorToken; tt = z.Next() {
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		for {
			key, val, more := z.TagAttr()
			if string(key) == "href" {
				if u := strings.TrimSpace(string(val)); u != "" {
					return u, true
				}
			}
			if !more {
				break
			}
		}
	}
	t := strings.TrimSpace(raw)
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return t, true
	}
	return "", false
}

// FormatAddress joins the primary and secondary address parts.
func FormatAddress(primary, secondary string) string {
	p := strings.TrimSpace(primary)
	if p == "" {
		return AddressUnavailable
	}
	if s := strings.TrimSpace(secondary); s != "" {
		return p + " " + s
	}
	return p
}

// SanitizePhone strips all whitespace so the value can back a tel: link.
func SanitizePhone(raw string) (string, bool) {
	s := strings.Join(strings.Fields(raw), "")
	return s, s != ""
}

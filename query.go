package emojimaker

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// queryOrder is the order of the parameters in an encoded selection.
var queryOrder = [NumCategories]Category{Eyes, Head, Eyebrows, Mouth, Details}

// ParseQuery decodes a selection from a query string. The leading
// question mark is optional and a full URL is accepted as well.
// Missing parameters keep their default value, malformed ones turn into None.
func ParseQuery(raw string) Selection {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	// A malformed pair is dropped by url.ParseQuery, the rest is still usable.
	v, _ := url.ParseQuery(raw)
	return FromValues(v)
}

// FromValues decodes a selection from already parsed query values.
func FromValues(v url.Values) Selection {
	s := DefaultSelection()
	for _, c := range Categories {
		if _, ok := v[c.Key()]; !ok {
			continue
		}
		s[c] = parseIndex(v.Get(c.Key()))
	}
	return s
}

func parseIndex(raw string) int {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || idx < None {
		return None
	}
	return idx
}

// Values returns the selection as query values.
func (s Selection) Values() url.Values {
	v := make(url.Values, NumCategories)
	for _, c := range Categories {
		v.Set(c.Key(), strconv.Itoa(s[c]))
	}
	return v
}

// Encode returns the selection as a query string, without the leading
// question mark, keeping the parameter order stable.
func (s Selection) Encode() string {
	var b strings.Builder
	for i, c := range queryOrder {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(c.Key())
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(s[c]))
	}
	return b.String()
}

// ShareURL attaches the encoded selection to base. Query parameters of base
// unrelated to the selection are preserved.
func (s Selection) ShareURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid share URL %q: %w", base, err)
	}
	q := u.Query()
	for _, c := range Categories {
		q.Del(c.Key())
	}
	u.RawQuery = s.Encode()
	if rest := q.Encode(); rest != "" {
		u.RawQuery += "&" + rest
	}
	return u.String(), nil
}

package utils

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
)

// Contains returns true if the value is present in the collection.
func Contains[T comparable](collection []T, value T) bool {
	for _, v := range collection {
		if v == value {
			return true
		}
	}
	return false
}

// IsValidUrl tests a string to determine if it is a well-structured http(s) url or not.
func IsValidUrl(uri string) bool {
	if _, err := url.ParseRequestURI(uri); err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// DetectContentType sniffs the MIME type of the data. SVG documents are
// reported as image/svg+xml, which the standard sniffer does not recognize.
func DetectContentType(data []byte) string {
	// Only the first 512 bytes are used to sniff the content type.
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	// Always returns a valid content-type and "application/octet-stream" if no others seemed to match.
	ct := http.DetectContentType(head)
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	// The document may start with whitespace, an XML declaration or comments.
	if bytes.Contains(head, []byte("<svg")) {
		return "image/svg+xml"
	}
	return ct
}

// IsImage reports whether the data looks like a supported image.
func IsImage(data []byte) bool {
	return strings.HasPrefix(DetectContentType(data), "image/")
}

package common

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

// PageRequest carries cursor pagination parameters for list endpoints.
// Token is an opaque continuation token returned by a previous page.
type PageRequest struct {
	Limit int    `json:"limit"`
	Token string `json:"token,omitempty"`
}

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ExtractPageRequest extracts cursor pagination parameters from a request.
// Out-of-range limits are clamped rather than rejected.
func ExtractPageRequest(r *http.Request) PageRequest {
	req := PageRequest{Limit: DefaultPageSize}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			if n > MaxPageSize {
				n = MaxPageSize
			}
			req.Limit = n
		}
	}

	req.Token = r.URL.Query().Get("next_token")
	return req
}

// EncodePageToken serializes a storage continuation key into an opaque
// URL-safe token. A nil or empty key yields an empty token.
func EncodePageToken(key map[string]string) (string, error) {
	if len(key) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(key)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodePageToken reverses EncodePageToken. An empty token yields a nil key.
func DecodePageToken(token string) (map[string]string, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var key map[string]string
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, err
	}
	return key, nil
}

// Page wraps a list of items with the token for the next page. An empty
// NextToken means the listing is complete.
type Page struct {
	Items     interface{} `json:"items"`
	Count     int         `json:"count"`
	NextToken string      `json:"next_token,omitempty"`
}

// NewPage creates a page envelope.
func NewPage(items interface{}, count int, nextToken string) *Page {
	return &Page{
		Items:     items,
		Count:     count,
		NextToken: nextToken,
	}
}

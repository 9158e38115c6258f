package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxIdempotencyKeyLength is the longest key, in characters, a client may send.
const MaxIdempotencyKeyLength = 50

var (
	// ErrIdempotencyKeyEmpty is returned for an empty idempotency key.
	ErrIdempotencyKeyEmpty = errors.New("the idempotency key cannot be empty")
	// ErrIdempotencyKeyTooLong is returned for keys over MaxIdempotencyKeyLength characters.
	ErrIdempotencyKeyTooLong = fmt.Errorf("the idempotency key must be shorter than %d characters", MaxIdempotencyKeyLength)
)

// IdempotencyKey is a client supplied token identifying a logical retryable request.
type IdempotencyKey string

// NewIdempotencyKey validates raw and returns it as an IdempotencyKey.
func NewIdempotencyKey(raw string) (IdempotencyKey, error) {
	if raw == "" {
		return "", ErrIdempotencyKeyEmpty
	}
	if utf8.RuneCountInString(raw) > MaxIdempotencyKeyLength {
		return "", ErrIdempotencyKeyTooLong
	}
	return IdempotencyKey(raw), nil
}

// String returns the raw key.
func (k IdempotencyKey) String() string {
	return string(k)
}

// HeaderPair is one response header line.
type HeaderPair struct {
	Name  string `json:"name"`
	Value []byte `json:"value"`
}

// HeaderPairs keeps response headers in the order they were written.
// It is stored as a JSONB array.
type HeaderPairs []HeaderPair

// HeaderPairsFrom flattens h into pairs, one per value.
func HeaderPairsFrom(h http.Header, order ...string) HeaderPairs {
	pairs := make(HeaderPairs, 0, len(h))
	seen := make(map[string]struct{}, len(order))
	for _, name := range order {
		canonical := http.CanonicalHeaderKey(name)
		for _, v := range h.Values(canonical) {
			pairs = append(pairs, HeaderPair{Name: canonical, Value: []byte(v)})
		}
		seen[canonical] = struct{}{}
	}
	for name, values := range h {
		if _, ok := seen[name]; ok {
			continue
		}
		for _, v := range values {
			pairs = append(pairs, HeaderPair{Name: name, Value: []byte(v)})
		}
	}
	return pairs
}

// Value implements driver.Valuer.
func (p HeaderPairs) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *HeaderPairs) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into HeaderPairs", src)
	}
}

// SavedResponse is an HTTP response snapshot that can be replayed byte for byte.
type SavedResponse struct {
	StatusCode int
	Headers    HeaderPairs
	Body       []byte
}

// SeeOther builds a 303 redirect to location.
func SeeOther(location string) *SavedResponse {
	return &SavedResponse{
		StatusCode: http.StatusSeeOther,
		Headers:    HeaderPairs{{Name: "Location", Value: []byte(location)}},
	}
}

// WriteTo replays the snapshot onto w.
func (r *SavedResponse) WriteTo(w http.ResponseWriter) {
	for _, h := range r.Headers {
		w.Header().Add(h.Name, string(h.Value))
	}
	w.WriteHeader(r.StatusCode)
	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}

// IdempotencyRecord is one row of the idempotency table. Null response
// fields mean the key is claimed and the request is still being processed.
type IdempotencyRecord struct {
	UserID             uuid.UUID   `db:"user_id"`
	IdempotencyKey     string      `db:"idempotency_key"`
	ResponseStatusCode *int        `db:"response_status_code"`
	ResponseHeaders    HeaderPairs `db:"response_headers"`
	ResponseBody       []byte      `db:"response_body"`
	CreatedAt          time.Time   `db:"created_at"`
}

// Completed reports whether a response has been saved for the record.
func (r *IdempotencyRecord) Completed() bool {
	return r.ResponseStatusCode != nil
}

// Response returns the saved response, or nil while the record is in progress.
func (r *IdempotencyRecord) Response() *SavedResponse {
	if !r.Completed() {
		return nil
	}
	return &SavedResponse{
		StatusCode: *r.ResponseStatusCode,
		Headers:    r.ResponseHeaders,
		Body:       r.ResponseBody,
	}
}

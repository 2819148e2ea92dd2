// Package cursor encodes opaque page tokens for sequence-ordered listings.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrStale reports a token minted for a different filter or ordering.
var ErrStale = errors.New("page token does not match the request")

// Direction indicates the pagination direction.
type Direction string

const (
	// DirectionForward paginates forward (seq > cursor).
	DirectionForward Direction = "fwd"
	// DirectionBackward paginates backward (seq < cursor).
	DirectionBackward Direction = "bwd"
)

// Cursor is the decoded state of a page token.
type Cursor struct {
	// Seq is the last sequence number of the previous page.
	Seq uint64 `json:"seq"`
	// Dir selects seq > cursor or seq < cursor.
	Dir Direction `json:"dir"`
	// FilterHash invalidates the token when the filter changes.
	FilterHash string `json:"filter_hash,omitempty"`
	// OrderHash invalidates the token when the ordering changes.
	OrderHash string `json:"order_hash,omitempty"`
}

// Encode encodes a cursor to an opaque token.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode decodes an opaque token to a cursor.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty token")
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if c.Dir != DirectionForward && c.Dir != DirectionBackward {
		return Cursor{}, fmt.Errorf("invalid cursor direction: %q", c.Dir)
	}
	return c, nil
}

// Hash computes a short hash for cursor validation; empty input hashes to "".
func Hash(value string) string {
	if value == "" {
		return ""
	}
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:8])
}

// Validate checks the cursor was minted for the same filter and ordering.
func (c Cursor) Validate(filter, orderBy string) error {
	if c.FilterHash != Hash(filter) {
		return fmt.Errorf("filter changed: %w", ErrStale)
	}
	if c.OrderHash != Hash(orderBy) {
		return fmt.Errorf("order_by changed: %w", ErrStale)
	}
	return nil
}

// Next returns the cursor for the page after lastSeq.
// Ascending order continues with seq > lastSeq, descending with seq < lastSeq.
func Next(lastSeq uint64, descending bool, filter, orderBy string) Cursor {
	dir := DirectionForward
	if descending {
		dir = DirectionBackward
	}
	return Cursor{
		Seq:        lastSeq,
		Dir:        dir,
		FilterHash: Hash(filter),
		OrderHash:  Hash(orderBy),
	}
}

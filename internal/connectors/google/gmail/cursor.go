package gmail

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// CursorVersion is the current wire format version. Decoding rejects
// any cursor written by a newer build.
const CursorVersion = 1

// ErrInvalidCursor indicates the cursor could not be decoded.
var ErrInvalidCursor = errors.New("gmail: invalid cursor format")

// Cursor carries the incremental-sync position for a mailbox. It is
// persisted in the sync-state store as an opaque base64 string.
type Cursor struct {
	Version int `json:"v"`
	// HistoryID is where the next history.list() call resumes. Zero
	// means no sync has completed and a full listing is required.
	HistoryID uint64 `json:"history_id"`
}

// NewCursor creates a new empty cursor.
func NewCursor() *Cursor {
	return &Cursor{
		Version: CursorVersion,
	}
}

// Encode serialises the cursor to a base64 string for storage.
func (c *Cursor) Encode() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor parses a stored cursor. An empty string yields a fresh
// cursor rather than an error, so a first sync needs no special case.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return NewCursor(), nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, ErrInvalidCursor
	}

	if cursor.Version > CursorVersion {
		return nil, ErrInvalidCursor
	}

	return &cursor, nil
}

// IsEmpty reports whether the cursor holds no sync position yet.
func (c *Cursor) IsEmpty() bool {
	return c.HistoryID == 0
}

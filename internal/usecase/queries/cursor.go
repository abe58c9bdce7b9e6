package queries

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	MaxListLimit    = 200
	CursorVersionV1 = "v1"
)

// EncodeAfterCursor points at the last reservation id of a page.
func EncodeAfterCursor(id int64) string {
	cursorData := fmt.Sprintf("%s:%d", CursorVersionV1, id)
	return base64.URLEncoding.EncodeToString([]byte(cursorData))
}

func DecodeAfterCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, fmt.Errorf("cursor cannot be empty")
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor encoding: %w", err)
	}
	payload, ok := strings.CutPrefix(string(decoded), CursorVersionV1+":")
	if !ok {
		return 0, fmt.Errorf("unsupported cursor version")
	}

	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid cursor id %q", payload)
	}
	return id, nil
}

type Cursor struct {
	After string `json:"after,omitempty"`
}

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default limit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{1, 1},
		{MaxLimit, MaxLimit},
		{MaxLimit + 50, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	orig := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(orig))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !parsed.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("created_at mismatch: got %v want %v", parsed.CreatedAt, orig.CreatedAt)
	}
	if parsed.ID != orig.ID {
		t.Errorf("id mismatch: got %s want %s", parsed.ID, orig.ID)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if cursor, err := ParseCursor(""); err != nil || cursor != nil {
		t.Fatalf("empty cursor should be first page, got %v / %v", cursor, err)
	}
	if _, err := ParseCursor("!!not-base64!!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor("bm8tc2VwYXJhdG9y"); err == nil {
		t.Fatal("expected format error for missing separator")
	}
}

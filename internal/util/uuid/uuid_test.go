package uuid_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/axelsub/axelsub/internal/util/uuid"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestNew(t *testing.T) {
	t.Parallel()

	uuid_, err := uuid.New(uuid.UUIDv7)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !uuidPattern.MatchString(uuid_.String()) {
		t.Errorf("New() generated invalid UUID format: %s", uuid_)
	}

	// v7 embeds a millisecond timestamp in the first 6 bytes
	b := uuid_.Bytes()
	ts := int64(b[0])<<40 | int64(b[1])<<32 | int64(b[2])<<24 | int64(b[3])<<16 | int64(b[4])<<8 | int64(b[5])

	if now := time.Now().UnixMilli(); now-ts > 1000 {
		t.Errorf("UUIDv7 timestamp too old: got %d, want close to %d", ts, now)
	}
}

func TestNewUnknownVersion(t *testing.T) {
	t.Parallel()

	if _, err := uuid.New(999); err == nil {
		t.Error("New(999) succeeded, want ErrUnknownVersion")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uuidStr string
		wantErr bool
	}{
		{"with hyphens", "123e4567-e89b-7abc-9def-123456789abc", false},
		{"without hyphens", "123e4567e89b7abc9def123456789abc", false},
		{"too short", "123e4567", true},
		{"non-hex", "123e4567-e89b-7abc-9def-12345678xxxx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := uuid.Parse(tt.uuidStr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && !uuidPattern.MatchString(parsed.String()) {
				t.Errorf("Parse() resulted in invalid UUID format: %s", parsed)
			}
		})
	}
}

func TestStringRoundtrip(t *testing.T) {
	t.Parallel()

	uuid_, err := uuid.New(uuid.UUIDv7)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	parsed, err := uuid.Parse(uuid_.String())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parsed.String() != uuid_.String() {
		t.Errorf("roundtrip mismatch: got %s, want %s", parsed, uuid_)
	}
}

func TestUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)

	for range 1000 {
		uuid_, err := uuid.New(uuid.UUIDv7)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		if seen[uuid_.String()] {
			t.Fatalf("duplicate UUID generated: %s", uuid_)
		}

		seen[uuid_.String()] = true
	}
}

package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestHandleMessageAppendsLogLine(t *testing.T) {
	chdir(t, t.TempDir())

	ev := BookingEvent{
		Type:        EventBookingCreated,
		BookingID:   7,
		RideID:      1,
		PassengerID: 5,
		Seats:       2,
		Origin:      "Astana",
		Destination: "Almaty",
		DepartsAt:   "2025-06-02T12:00:00Z",
		OccurredAt:  "2025-06-01T12:00:00Z",
	}
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := handleMessage(body); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if err := handleMessage(body); err != nil {
		t.Fatalf("second handle failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join("logs", "booking.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 appended lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "booking.created") ||
		!strings.Contains(lines[0], `route="Astana -> Almaty"`) ||
		!strings.Contains(lines[0], "seats=2") {
		t.Fatalf("unexpected log line: %s", lines[0])
	}
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
	chdir(t, t.TempDir())
	if err := handleMessage([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

package csvlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lailalab/aigateway/internal/domain"
)

func TestSink_AppendAndHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.csv")

	sink, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	uid := int64(9)
	ms := int64(1234)
	rec := &domain.InteractionRecord{
		UserID:         &uid,
		SessionID:      "sess-1",
		Timestamp:      time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Module:         "vignette_chat",
		Sender:         domain.SenderAI,
		Turn:           2,
		Message:        "an answer, with a comma",
		AIModel:        "gpt-4o-mini",
		ResponseTimeMS: &ms,
		Context:        "analysis_type: bias",
	}

	if err := sink.Append(rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1 record", len(rows))
	}
	if rows[0][0] != "user_id" {
		t.Errorf("header first column = %v, want user_id", rows[0][0])
	}

	got := rows[1]
	if got[0] != "9" {
		t.Errorf("user_id = %v, want 9", got[0])
	}
	if got[2] != "2026-03-01 10:30:00" {
		t.Errorf("timestamp = %v, want 2026-03-01 10:30:00", got[2])
	}
	if got[6] != "an answer, with a comma" {
		t.Errorf("message = %q, comma not preserved", got[6])
	}
	if got[8] != "1.23" {
		t.Errorf("response_time_sec = %v, want 1.23", got[8])
	}
}

func TestSink_EmptyOptionalColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.csv")

	sink, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := &domain.InteractionRecord{
		SessionID: "sess-1",
		Timestamp: time.Now(),
		Module:    "vignette_chat",
		Sender:    domain.SenderUser,
		Turn:      1,
		Message:   "hi",
	}
	if err := sink.Append(rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	sink.Close()

	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	got := rows[1]
	if got[0] != "" || got[7] != "" || got[8] != "" {
		t.Errorf("optional columns = %q/%q/%q, want empty", got[0], got[7], got[8])
	}
}

func TestSink_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.csv")

	for i := 0; i < 2; i++ {
		sink, err := New(path)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		rec := &domain.InteractionRecord{
			SessionID: "sess-1",
			Timestamp: time.Now(),
			Module:    "vignette_chat",
			Sender:    domain.SenderUser,
			Turn:      i + 1,
			Message:   "hi",
		}
		if err := sink.Append(rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		sink.Close()
	}

	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2 records", len(rows))
	}
	if rows[1][0] == "user_id" || rows[2][0] == "user_id" {
		t.Error("header repeated after reopen")
	}
}

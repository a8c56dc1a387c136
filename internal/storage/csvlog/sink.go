// Package csvlog implements the append-only durability fallback for
// interaction records. It is written only when the primary store fails,
// using the same logical columns as the chat_logs table.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/lailalab/aigateway/internal/domain"
	"github.com/lailalab/aigateway/internal/storage"
)

const timestampLayout = "2006-01-02 15:04:05"

var header = []string{
	"user_id", "session_id", "timestamp", "module", "sender",
	"turn", "message", "ai_model", "response_time_sec", "context",
}

// Sink appends interaction records to a flat CSV file.
type Sink struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *csv.Writer
}

var _ storage.InteractionSink = (*Sink)(nil)

// New opens (or creates) the sink file at path. The header row is written
// only when the file is new or empty.
func New(path string) (*Sink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open fallback log: %w", err)
	}

	s := &Sink{path: path, file: file, w: csv.NewWriter(file)}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat fallback log: %w", err)
	}
	if info.Size() == 0 {
		if err := s.w.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("write fallback header: %w", err)
		}
		s.w.Flush()
		if err := s.w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("flush fallback header: %w", err)
		}
	}

	return s, nil
}

// Append writes one record and flushes it to disk.
func (s *Sink) Append(rec *domain.InteractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := []string{
		formatUserID(rec.UserID),
		rec.SessionID,
		rec.Timestamp.Format(timestampLayout),
		rec.Module,
		string(rec.Sender),
		strconv.Itoa(rec.Turn),
		rec.Message,
		rec.AIModel,
		formatResponseTime(rec.ResponseTimeMS),
		rec.Context,
	}

	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("append fallback row: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush fallback row: %w", err)
	}
	return nil
}

// Close flushes and closes the sink file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func formatUserID(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatResponseTime(ms *int64) string {
	if ms == nil {
		return ""
	}
	sec := math.Round(float64(*ms)/10) / 100
	return strconv.FormatFloat(sec, 'f', 2, 64)
}

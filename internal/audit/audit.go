// Package audit keeps the append-only CSV trail of operator actions.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"
)

var header = []string{"Timestamp", "Action", "TicketID", "Name", "Details"}

// Entry is one recorded operator action.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TicketID  string    `json:"ticket_id"`
	Name      string    `json:"name"`
	Details   string    `json:"details"`
}

// Log appends operator actions to a CSV file, writing the header on
// first use. Append failures are returned, never retried.
type Log struct {
	mu   sync.Mutex
	path string

	now func() time.Time
}

func NewLog(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Record appends one action row.
func (l *Log) Record(action, ticketID, name, details string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: open: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("audit: write header: %w", err)
		}
	}
	row := []string{l.now().UTC().Format(time.RFC3339), action, ticketID, name, details}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("audit: write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("audit: flush: %w", err)
	}
	return nil
}

// Entries reads the whole trail, oldest first. A missing file is an
// empty trail.
func (l *Log) Entries() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("audit: open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("audit: parse: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	out := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			continue
		}
		at, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Timestamp: at,
			Action:    row[1],
			TicketID:  row[2],
			Name:      row[3],
			Details:   row[4],
		})
	}
	return out, nil
}

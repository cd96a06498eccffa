package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// WriteRecords writes records to a JSONL file, replacing any existing content.
func WriteRecords(path string, records []Record) error {
	return writeRecords(path, records, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// AppendRecords appends records to a JSONL file, creating it if needed.
func AppendRecords(path string, records []Record) error {
	return writeRecords(path, records, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

func writeRecords(path string, records []Record, flag int) error {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open dataset file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode dataset record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush dataset file %s: %w", path, err)
	}

	slog.Debug("Wrote dataset records", "path", path, "count", len(records))
	return nil
}

// ReadRecords loads records from a JSONL file. Blank lines are skipped; a
// malformed line is an error, not a silent drop.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("malformed dataset record at %s:%d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", path, err)
	}

	return records, nil
}

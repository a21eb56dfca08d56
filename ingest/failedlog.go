package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// failedLog is the append-only failed-URL log, one URL per line. A URL
// may repeat across runs and passes.
type failedLog struct {
	mu   sync.Mutex
	path string
}

func newFailedLog(path string) *failedLog {
	return &failedLog{path: path}
}

// Append adds one URL to the log. A log without a configured path is
// a no-op.
func (f *failedLog) Append(url string) error {
	if f.path == "" {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open failed log: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, url); err != nil {
		return fmt.Errorf("append to failed log: %w", err)
	}
	return nil
}

// URLs returns the logged URLs, deduplicated in first-seen order.
// A missing log reads as empty.
func (f *failedLog) URLs() ([]string, error) {
	if f.path == "" {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open failed log: %w", err)
	}
	defer file.Close()

	seen := make(map[string]struct{})
	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read failed log: %w", err)
	}
	return urls, nil
}

package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/poiesic/harvester/core"
)

// fetchCSV downloads a CSV file to a temporary path, parses each row into a
// RawDocument, and removes the temporary file on every exit path. GitHub
// blob URLs are converted to their raw form first.
func (l *Loader) fetchCSV(ctx context.Context, rawURL string) ([]core.RawDocument, error) {
	downloadURL := GitHubRawURL(rawURL)

	tmp, err := os.CreateTemp("", "harvester-*.csv")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := l.download(ctx, downloadURL, tmp); err != nil {
		tmp.Close()
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("rewind temp file: %w", err)
	}
	defer tmp.Close()

	return parseCSVRows(tmp, rawURL)
}

func (l *Loader) download(ctx context.Context, rawURL string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d for %s", ErrHTTPStatus, resp.StatusCode, rawURL)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}

// parseCSVRows turns each data row into one document whose content pairs
// header names with values, one field per line.
func parseCSVRows(r io.Reader, sourceURL string) ([]core.RawDocument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var docs []core.RawDocument
	for rowNum := 1; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNum, err)
		}

		var b strings.Builder
		for i, value := range row {
			if strings.TrimSpace(value) == "" {
				continue
			}
			name := fmt.Sprintf("column_%d", i+1)
			if i < len(header) {
				name = strings.TrimSpace(header[i])
			}
			fmt.Fprintf(&b, "%s: %s\n", name, strings.TrimSpace(value))
		}
		content := strings.TrimSpace(b.String())
		if content == "" {
			continue
		}

		docs = append(docs, core.RawDocument{
			Content: content,
			Metadata: map[string]any{
				"source": sourceURL,
				"row":    rowNum,
			},
		})
	}
	return docs, nil
}

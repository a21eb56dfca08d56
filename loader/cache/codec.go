package cache

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// marshalPage serializes a Page using the MUS format: URL, body, then the
// fetch timestamp as unix nanoseconds.
func marshalPage(page *Page) []byte {
	fetchedAt := page.FetchedAt.UnixNano()
	size := ord.String.Size(page.URL) +
		ord.String.Size(page.Body) +
		varint.Int64.Size(fetchedAt)

	buf := make([]byte, size)
	n := ord.String.Marshal(page.URL, buf)
	n += ord.String.Marshal(page.Body, buf[n:])
	varint.Int64.Marshal(fetchedAt, buf[n:])
	return buf
}

// unmarshalPage deserializes a Page written by marshalPage.
func unmarshalPage(data []byte) (*Page, error) {
	url, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	body, m, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	fetchedAt, _, err := varint.Int64.Unmarshal(data[n+m:])
	if err != nil {
		return nil, err
	}
	return &Page{
		URL:       url,
		Body:      body,
		FetchedAt: time.Unix(0, fetchedAt).UTC(),
	}, nil
}

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCodecRoundTrip(t *testing.T) {
	in := &Page{
		URL:       "https://example.org/page",
		Body:      "<html><body>hello</body></html>",
		FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	out, err := unmarshalPage(marshalPage(in))
	require.NoError(t, err)
	assert.Equal(t, in.URL, out.URL)
	assert.Equal(t, in.Body, out.Body)
	assert.True(t, in.FetchedAt.Equal(out.FetchedAt))
}

func TestPageCodecTruncatedData(t *testing.T) {
	data := marshalPage(&Page{URL: "https://example.org", Body: "body", FetchedAt: time.Now()})
	_, err := unmarshalPage(data[:3])
	assert.Error(t, err)
}

func TestCachePutGet(t *testing.T) {
	c, err := Open(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	page := &Page{URL: "https://example.org/a", Body: "contents", FetchedAt: time.Now().UTC()}
	require.NoError(t, c.Put(page))

	got, ok := c.Get("https://example.org/a")
	require.True(t, ok)
	assert.Equal(t, "contents", got.Body)
}

func TestCacheMiss(t *testing.T) {
	c, err := Open(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	_, ok := c.Get("https://example.org/never-seen")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c, err := Open(t.TempDir(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Put(&Page{URL: "https://example.org/b", Body: "x", FetchedAt: time.Now()}))
	time.Sleep(1100 * time.Millisecond)

	_, ok := c.Get("https://example.org/b")
	assert.False(t, ok)
}

func TestCachePutNil(t *testing.T) {
	c, err := Open(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	assert.NoError(t, c.Put(nil))
	assert.NoError(t, c.Put(&Page{}))
}

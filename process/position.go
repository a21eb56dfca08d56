package process

import "strings"

// positionTracker locates each chunk's exact character range inside its
// document's cleaned text. The splitter emits chunks sequentially with a
// bounded overlap, so a running expected offset hits on an O(1) equality
// check in the vast majority of cases. When it does not, a bounded window
// around the expected offset is searched, then the remainder of the
// document, and as a last resort the expected offset is used as an
// approximation. Position drift never fails the pipeline.
//
// After each chunk the expected offset advances to charEnd-overlap, the
// position where the next overlapping chunk is expected to begin, clamped
// to charEnd when that would go negative.
type positionTracker struct {
	content  string
	overlap  int
	expected int
}

func newPositionTracker(content string, overlap int) *positionTracker {
	return &positionTracker{content: content, overlap: overlap}
}

// locate returns the chunk's [start,end) byte range and whether the
// position was approximated rather than found.
func (t *positionTracker) locate(chunk string) (start, end int, approximate bool) {
	start, approximate = t.find(chunk)
	end = start + len(chunk)

	next := end - t.overlap
	if next < 0 {
		next = end
	}
	t.expected = next
	return start, end, approximate
}

func (t *positionTracker) find(chunk string) (int, bool) {
	expected := t.expected
	if expected > len(t.content) {
		expected = len(t.content)
	}

	// Tier 1: exact match at the expected offset.
	if expected+len(chunk) <= len(t.content) &&
		t.content[expected:expected+len(chunk)] == chunk {
		return expected, false
	}

	// Tier 2: bounded window around the expected offset.
	lo := expected - t.overlap
	if lo < 0 {
		lo = 0
	}
	hi := expected + len(chunk) + t.overlap
	if hi > len(t.content) {
		hi = len(t.content)
	}
	if lo < hi {
		if idx := strings.Index(t.content[lo:hi], chunk); idx >= 0 {
			return lo + idx, false
		}
	}

	// Tier 3: unbounded forward search from the expected offset.
	if idx := strings.Index(t.content[expected:], chunk); idx >= 0 {
		return expected + idx, false
	}

	// Tier 4: approximate at the expected offset.
	return expected, true
}

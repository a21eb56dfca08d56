package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longParagraph = "This is the primary body of the page and it keeps going for long " +
	"enough to pass the main-content threshold. It describes the subject in detail, " +
	"offers several sentences of real information, and is clearly not an empty shell " +
	"or a navigation fragment of any kind whatsoever."

func TestCleanHTMLMainContent(t *testing.T) {
	html := `<html><body>
		<nav><a href="/">Home</a><a href="/about">About</a></nav>
		<main><p>` + longParagraph + `</p></main>
		<footer>Copyright 2025 Example Corp</footer>
	</body></html>`

	got := New().CleanHTML(html)
	assert.Contains(t, got, "primary body of the page")
	assert.NotContains(t, got, "Home")
	assert.NotContains(t, got, "Copyright")
}

func TestCleanHTMLDropsScriptAndStyle(t *testing.T) {
	html := `<html><body>
		<script>var tracking = true;</script>
		<style>.hidden { display: none }</style>
		<noscript>Please enable JavaScript to continue</noscript>
		<main><p>` + longParagraph + `</p></main>
	</body></html>`

	got := New().CleanHTML(html)
	assert.NotContains(t, got, "tracking")
	assert.NotContains(t, got, "display")
	assert.NotContains(t, got, "enable JavaScript")
}

func TestCleanHTMLRejectsEmptyMainShell(t *testing.T) {
	// <main> exists but is nearly empty; the article under it in the body
	// should still be reachable through the body fallback.
	html := `<html><body>
		<main><div id="app"></div></main>
		<p>` + longParagraph + `</p>
	</body></html>`

	got := New().CleanHTML(html)
	assert.Contains(t, got, "primary body of the page")
}

func TestCleanHTMLKeywordClasses(t *testing.T) {
	html := `<html><body><main>
		<div class="cookie-banner">We use cookies to improve your experience on this site</div>
		<div class="social-share">Share this article with your friends today</div>
		<p>` + longParagraph + `</p>
	</main></body></html>`

	got := New().CleanHTML(html)
	assert.NotContains(t, got, "cookies")
	assert.NotContains(t, got, "Share this article")
	assert.Contains(t, got, "primary body")
}

func TestCleanHTMLRoleAttributes(t *testing.T) {
	html := `<html><body><main>
		<div role="navigation">Products Services Contact Details Here</div>
		<div role="complementary">You might also like these other articles</div>
		<p>` + longParagraph + `</p>
	</main></body></html>`

	got := New().CleanHTML(html)
	assert.NotContains(t, got, "Products Services")
	assert.NotContains(t, got, "might also like")
}

func TestCleanHTMLPrunesSmallContainers(t *testing.T) {
	html := `<html><body><main>
		<div>tiny fragment of residue text</div>
		<p>` + longParagraph + `</p>
	</main></body></html>`

	got := New().CleanHTML(html)
	assert.NotContains(t, got, "tiny fragment")
	assert.Contains(t, got, "primary body")
}

func TestCleanHTMLUnparseableFallsBackToText(t *testing.T) {
	// goquery parses almost anything, so this mostly asserts the fallback
	// path produces cleaned text rather than panicking on odd input.
	got := New().CleanHTML("just a plain sentence with no markup at all")
	assert.Equal(t, "just a plain sentence with no markup at all", got)
}

func TestCleanText(t *testing.T) {
	t.Run("collapses whitespace", func(t *testing.T) {
		got := New().CleanText("too    many   spaces   between these words")
		assert.Equal(t, "too many spaces between these words", got)
	})

	t.Run("drops short lines", func(t *testing.T) {
		got := New().CleanText("Home\nAbout Us\nA real sentence with enough words\n")
		assert.Equal(t, "A real sentence with enough words", got)
	})

	t.Run("strips boilerplate phrases", func(t *testing.T) {
		raw := strings.Join([]string{
			"This website uses cookies to personalise content and adverts",
			"Real content line that should definitely remain here",
			"Copyright 2024 Example Corporation, all divisions",
			"Last updated on 3 March 2024 by the web team",
		}, "\n")
		got := New().CleanText(raw)
		assert.Equal(t, "Real content line that should definitely remain here", got)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Equal(t, "", New().CleanText("   \n\n  \n"))
	})
}

func TestCleanTextMayProduceEmpty(t *testing.T) {
	// Every line is boilerplate or short; an empty result is valid and the
	// caller is responsible for falling back to raw content.
	got := New().CleanText("Home\nMenu\nAccept all cookies now please kindly\n")
	require.Equal(t, "", got)
}

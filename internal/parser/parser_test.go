package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftbeard/ragserver/internal/apperr"
)

func TestParsePlainText(t *testing.T) {
	p := New()

	segments, err := p.Parse([]byte("hello world\nsecond line"), "notes.txt", "text/plain")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 1, segments[0].Number)
	assert.Contains(t, segments[0].Text, "hello world")
	assert.Contains(t, segments[0].Text, "second line")
}

func TestParsePlainTextWithCharsetParam(t *testing.T) {
	p := New()

	segments, err := p.Parse([]byte("content"), "notes.txt", "text/plain; charset=utf-8")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0].Text, "content")
}

func TestParseHTMLStripsMarkup(t *testing.T) {
	p := New()

	html := `<html><head><title>T</title><style>body{color:red}</style></head>
	<body>
		<nav>navigation links</nav>
		<script>console.log("noise")</script>
		<p>The actual    content.</p>
		<footer>copyright</footer>
	</body></html>`

	segments, err := p.Parse([]byte(html), "page.html", "text/html")
	require.NoError(t, err)
	require.Len(t, segments, 1)

	text := segments[0].Text
	assert.Contains(t, text, "The actual content.")
	assert.NotContains(t, text, "navigation links")
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "copyright")
	assert.NotContains(t, text, "color:red")
}

func TestParseHTMLEmptyBody(t *testing.T) {
	p := New()

	segments, err := p.Parse([]byte("<html><body></body></html>"), "empty.html", "text/html")
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestParseCorruptPDF(t *testing.T) {
	p := New()

	_, err := p.Parse([]byte("this is not a pdf"), "fake.pdf", "application/pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrIO))
}

func TestParseContentTypeCaseInsensitive(t *testing.T) {
	p := New()

	_, err := p.Parse([]byte("not a pdf either"), "fake.pdf", "Application/PDF")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrIO))
}

func TestParseUnknownTypeFallsBackToText(t *testing.T) {
	p := New()

	segments, err := p.Parse([]byte("raw bytes treated as text"), "blob", "application/octet-stream")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0].Text, "raw bytes treated as text")
}

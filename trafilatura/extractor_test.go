package trafilatura_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const article = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="Understanding Goroutines">
  <meta name="author" content="Jane Doe">
  <meta name="description" content="A practical look at goroutines and channels.">
  <meta property="og:site_name" content="Go Notes">
</head>
<body>
  <nav><ul><li><a href="/">Home</a></li><li><a href="/about">About us</a></li></ul></nav>
  <main>
    <article>
      <h1>Understanding Goroutines</h1>
      <p>Goroutines are lightweight threads managed by the Go runtime. They are cheap to create
      and a single program may run many thousands of them at the same time without trouble.</p>
      <p>Channels connect goroutines. A send blocks until a receiver is ready, unless the channel
      is buffered, in which case the send only blocks when the buffer is full.</p>
      <pre><code>go func() { fmt.Println("Hello, World!") }()</code></pre>
      <p>Use the sync package when shared memory is simpler than passing messages around.</p>
    </article>
  </main>
  <footer><p>Copyright 2024 Go Notes. All rights reserved.</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts metadata", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(article)

		require.NoError(t, err)
		assert.Equal(t, "Understanding Goroutines", result.Title)
		assert.Equal(t, "Jane Doe", result.Author)
		assert.Equal(t, "A practical look at goroutines and channels.", result.Description)
		assert.Equal(t, "Go Notes", result.SiteName)
	})

	t.Run("extracts main content without boilerplate", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(article)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "lightweight threads")
		assert.Contains(t, result.ContentHTML, "Channels connect goroutines")
		assert.NotContains(t, result.ContentHTML, "About us")
		assert.NotContains(t, result.ContentHTML, "All rights reserved")
	})

	t.Run("preserves code blocks", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(article)

		require.NoError(t, err)
		assert.True(t, strings.Contains(result.ContentHTML, "Hello, World!"))
	})

	t.Run("handles minimal valid HTML", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(`<html><body><p>Simple content</p></body></html>`)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Simple content")
	})

	t.Run("returns EINVALID for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract(" ")

		require.Error(t, err)
		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})
}

package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html>
<head>
  <title> Go  Release Notes </title>
  <meta name="description" content="What changed in Go.">
  <style>body { color: red }</style>
</head>
<body>
  <header><a href="/">Home</a></header>
  <nav><ul><li>Docs</li><li>Blog</li></ul></nav>
  <h1>Go 1.22</h1>
  <p>Loop variables are now
     per-iteration.</p>
  <h2>Tools</h2>
  <div>The <b>go</b> command gained workspaces.</div>
  <script>console.log("tracking")</script>
  <footer>Copyright</footer>
</body>
</html>`

func TestExtract(t *testing.T) {
	page, err := Extract("https://go.dev/doc", samplePage)
	require.NoError(t, err)

	assert.Equal(t, "https://go.dev/doc", page.URL)
	assert.Equal(t, "Go Release Notes", page.Title)
	assert.Equal(t, "What changed in Go.", page.Description)
	assert.Equal(t, []string{"Go 1.22", "Tools"}, page.Headings)
	assert.Equal(t, "Go 1.22\nLoop variables are now per-iteration.\nTools\nThe go command gained workspaces.", page.Content)
	assert.NotContains(t, page.Content, "tracking")
	assert.NotContains(t, page.Content, "Docs")
	assert.NotContains(t, page.Content, "Copyright")
}

func TestExtractOpenGraphDescription(t *testing.T) {
	page, err := Extract("u", `<html><head><meta property="og:description" content="Shared card"></head><body>x</body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Shared card", page.Description)
	assert.Equal(t, "x", page.Content)
}

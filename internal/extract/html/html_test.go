package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraphs",
			input: "<html><body><p>First   line.</p><p>Second line.</p></body></html>",
			want:  "First line.\nSecond line.",
		},
		{
			name:  "head and scripts dropped",
			input: "<html><head><title>T</title><style>p{}</style></head><body><script>var x = 1;</script><p>Kept</p></body></html>",
			want:  "Kept",
		},
		{
			name:  "entities decoded",
			input: "<p>Fish &amp; chips &lt;3</p>",
			want:  "Fish & chips <3",
		},
		{
			name:  "line breaks",
			input: "<div>one<br>two<br/>three</div>",
			want:  "one\ntwo\nthree",
		},
		{
			name:  "inline markup joins",
			input: "<p>A <b>bold</b> and <a href=\"#\">linked</a> word</p>",
			want:  "A bold and linked word",
		},
		{
			name:  "comments dropped",
			input: "<p>Before<!-- hidden --> after</p>",
			want:  "Before after",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	x := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := x.Extract(context.Background(), "page.html", []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, "page.html", []byte("<p>text</p>"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSupportedExtensions(t *testing.T) {
	x := New()
	assert.ElementsMatch(t, []string{".html", ".htm", ".xhtml"}, x.SupportedExtensions())
	assert.Equal(t, 50, x.Priority())
}

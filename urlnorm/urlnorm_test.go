package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips query", "https://example.com/a?q=1", "https://example.com/a"},
		{"strips fragment", "https://example.com/a#top", "https://example.com/a"},
		{"strips both", "https://example.com/a?q=1#top", "https://example.com/a"},
		{"trailing slash removed", "https://example.com/a/", "https://example.com/a"},
		{"root slash kept", "https://example.com/", "https://example.com/"},
		{"no path untouched", "https://example.com", "https://example.com"},
		{"nested path", "https://example.com/a/b/c/", "https://example.com/a/b/c"},
		{"case preserved", "https://Example.com/Path", "https://Example.com/Path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://example.com/a?q=1#top",
		"https://example.com/a/",
		"https://example.com/",
		"http://sub.example.com/x/y?z=1",
		"example.com/page",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestNormalize_ParseFailure(t *testing.T) {
	// Control characters make url.Parse fail; the input comes back unchanged.
	bad := "https://example.com/\x7f%zz"
	assert.Equal(t, bad, Normalize(bad))
}

func TestHostPath(t *testing.T) {
	assert.Equal(t, "example.com/a", HostPath("https://example.com/a?q=1"))
	assert.Equal(t, "example.com/a", HostPath("http://example.com/a/"))
	assert.Equal(t, "Example.com/A", HostPath("https://Example.com/A"))
	assert.Equal(t, "example.com", HostPath("https://example.com/"))
	assert.Equal(t, "example.com", HostPath("https://example.com"))
}

func TestVariants(t *testing.T) {
	v := Variants("https://Example.com/Docs/")
	assert.Len(t, v, 4)
	assert.Contains(t, v, "https://Example.com/Docs")
	assert.Contains(t, v, "https://example.com/docs")
	assert.Contains(t, v, "Example.com/Docs")
	assert.Contains(t, v, "example.com/docs")
}

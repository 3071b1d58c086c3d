package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch extra params", "https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"bare host", "https://youtube.com/watch?v=abc123", "abc123"},
		{"mobile", "https://m.youtube.com/watch?v=abc123", "abc123"},
		{"music", "https://music.youtube.com/watch?v=abc123", "abc123"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=xyz&t=10", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=abc123", "abc123"},
		{"no scheme short", "youtu.be/abc123", "abc123"},
		{"shorts", "https://www.youtube.com/shorts/Ab_Cd-123", "Ab_Cd-123"},
		{"embed", "https://www.youtube.com/embed/abc123?start=5", "abc123"},
		{"live", "https://www.youtube.com/live/abc123", "abc123"},
		{"mixed case host", "https://WWW.YouTube.com/watch?v=abc123", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractVideoIDRejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"other host", "https://vimeo.com/12345"},
		{"lookalike host", "https://notyoutube.com/watch?v=abc123"},
		{"no id", "https://www.youtube.com/watch"},
		{"channel page", "https://www.youtube.com/@somechannel"},
		{"empty short link", "https://youtu.be/"},
		{"bad characters", "https://www.youtube.com/watch?v=abc%20def"},
		{"garbage", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractVideoID(tt.url)
			require.Error(t, err)
			code, _ := engine.CodeOf(err)
			assert.Equal(t, engine.CodeValidation, code)
		})
	}
}

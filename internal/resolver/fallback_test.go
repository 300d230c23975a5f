package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elsanchez/linkgrab/internal/domain"
)

func TestFallback_AlwaysEmptyMedias(t *testing.T) {
	tests := []struct {
		name  string
		gen   Generator
		title string
		tag   string
	}{
		{"no generator", nil, placeholderTitle, placeholderTag},
		{"service error", &fakeGenerator{err: errors.New("503")}, placeholderTitle, placeholderTag},
		{"invalid json", &fakeGenerator{text: "Sure! Here is the title"}, placeholderTitle, placeholderTag},
		{"json array", &fakeGenerator{text: `["a"]`}, placeholderTitle, placeholderTag},
		{"full answer", &fakeGenerator{text: `{"title":"Epic clip","platform":"YouTube","thumbnailHint":"sunset"}`}, "Epic clip", "YouTube"},
		{"missing fields", &fakeGenerator{text: `{}`}, fallbackTitle, domain.PlatformSnapchat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFallback(tt.gen, newTestLogger())
			info := f.Resolve(context.Background(), "https://snapchat.com/t/1")

			assert.NotNil(t, info.Medias)
			assert.Empty(t, info.Medias)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.tag, info.Platform)
			assert.Equal(t, "HD", info.Duration)
			assert.Contains(t, info.Thumbnail, StockThumbnail)
			assert.Equal(t, domain.SourceFallback, info.Source)
		})
	}
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	gen, err := NewGeminiGenerator(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoGenerator)
	assert.Nil(t, gen)
}

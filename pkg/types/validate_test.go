package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputValidate(t *testing.T) {
	red := ColorRed
	pink := "pink"

	tests := []struct {
		name    string
		input   interface{ Validate() error }
		wantErr error
	}{
		{"bookmark with uri", BookmarkInput{URI: "https://go.dev"}, nil},
		{"bookmark without uri", BookmarkInput{URI: " "}, ErrInvalidURI},
		{"tag", TagInput{Tag: "go"}, nil},
		{"tag with colour", TagInput{Tag: "go", Color: &red}, nil},
		{"blank tag", TagInput{Tag: ""}, ErrInvalidTag},
		{"unknown colour", TagInput{Tag: "go", Color: &pink}, ErrInvalidColor},
		{"join row", BookmarkTagInput{BookmarkID: 1, TagID: 2}, nil},
		{"join row without tag", BookmarkTagInput{BookmarkID: 1}, ErrInvalidID},
		{"link", LinkInput{URI: "https://go.dev", Tags: []string{"go"}}, nil},
		{"link with blank tag", LinkInput{URI: "https://go.dev", Tags: []string{""}}, ErrInvalidTag},
		{"link without uri", LinkInput{}, ErrInvalidURI},
		{"link tag", LinkTagInput{LinkID: 1, Tag: "go"}, nil},
		{"link tag without owner", LinkTagInput{Tag: "go"}, ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidColor(t *testing.T) {
	for _, c := range Colors {
		assert.True(t, ValidColor(c), c)
	}
	assert.False(t, ValidColor("pink"))
	assert.False(t, ValidColor(""))
}

func TestBookmarkInputTagIDs(t *testing.T) {
	in := BookmarkInput{Tags: []Tag{{ID: 3}, {ID: 1}}}
	assert.Equal(t, []int64{3, 1}, in.TagIDs())
}

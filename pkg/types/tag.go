package types

import "strings"

// Tag colours. The set is closed; any other value is rejected.
const (
	ColorGray   = "gray"
	ColorWhite  = "white"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"
	ColorPurple = "purple"
	ColorBlue   = "blue"
	ColorGreen  = "green"
)

// Colors lists the recognised tag colours in display order.
var Colors = []string{
	ColorGray,
	ColorWhite,
	ColorYellow,
	ColorOrange,
	ColorRed,
	ColorPurple,
	ColorBlue,
	ColorGreen,
}

var validColors = map[string]bool{
	ColorGray:   true,
	ColorWhite:  true,
	ColorYellow: true,
	ColorOrange: true,
	ColorRed:    true,
	ColorPurple: true,
	ColorBlue:   true,
	ColorGreen:  true,
}

// ValidColor reports whether c is one of the recognised colours.
func ValidColor(c string) bool {
	return validColors[c]
}

// Tag is a globally unique label that bookmarks are associated with.
type Tag struct {
	ID    int64   `json:"id"`
	Tag   string  `json:"tag"`
	Color *string `json:"color,omitempty"`
}

// TagInput is the write shape for a tag.
type TagInput struct {
	Tag   string  `json:"tag"`
	Color *string `json:"color,omitempty"`
}

// Validate checks the tag text and the optional colour.
func (in TagInput) Validate() error {
	if strings.TrimSpace(in.Tag) == "" {
		return ErrInvalidTag
	}
	if in.Color != nil && !ValidColor(*in.Color) {
		return ErrInvalidColor
	}
	return nil
}

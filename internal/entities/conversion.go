package entities

import "fmt"

// ConversionSpec is one target box an image is resized into.
type ConversionSpec struct {
	MaxWidth  int `json:"max_width" validate:"gt=0"`
	MaxHeight int `json:"max_height" validate:"gt=0"`
}

func (c ConversionSpec) String() string {
	return fmt.Sprintf("%dx%d", c.MaxWidth, c.MaxHeight)
}

// DefaultConversions is the fixed list of targets every input image is resized into.
// Changing it requires a redeploy.
var DefaultConversions = []ConversionSpec{
	{MaxWidth: 500, MaxHeight: 500},
	{MaxWidth: 300, MaxHeight: 300},
	{MaxWidth: 100, MaxHeight: 100},
}

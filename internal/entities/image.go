package entities

import (
	"fmt"
	"strings"
)

// OutputObject is a resized image ready to be written to storage.
type OutputObject struct {
	Bucket string
	Key    string
	Body   []byte
}

// OutputKey names a resized copy: "{prefix/}image-{epochMillis}-{W}x{H}.jpg".
// All copies of one source image share the timestamp, so they only differ by size.
func OutputKey(prefix string, timestampMillis int64, box ConversionSpec) string {
	name := fmt.Sprintf("image-%d-%dx%d.jpg", timestampMillis, box.MaxWidth, box.MaxHeight)

	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// ResultEnvelope is the value returned to the invoker.
type ResultEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

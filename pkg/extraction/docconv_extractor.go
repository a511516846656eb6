package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
)

// DocconvExtractor extracts text with docconv, picking the parser by the
// file's extension.
type DocconvExtractor struct{}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

func (e *DocconvExtractor) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no content to extract from %q", filename)
	}

	mimeType := docconv.MimeTypeByExtension(filename)

	res, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		return "", fmt.Errorf("extract %q (%s): %w", filename, mimeType, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", fmt.Errorf("extracted empty text from %q (%s)", filename, mimeType)
	}

	return text, nil
}

package extraction

import "context"

// Port turns raw document bytes into plain text. Implementations fail on
// unsupported or corrupt input, and on empty extraction results.
type Port interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

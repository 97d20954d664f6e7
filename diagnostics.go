package shroud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// decodeSnippet extracts a fragment of data near the failure described by cause.
// Best effort: any panic is recovered, reported, and yields an empty snippet.
func decodeSnippet(ctx context.Context, data []byte, cause error, size int) (snippet string) {
	if size <= 0 || len(data) == 0 {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			snippet = ""
			emitDiagnosticFailed(ctx, fmt.Errorf("snippet extraction: %v", r))
		}
	}()

	start, end := 0, size
	if off, ok := errorOffset(cause); ok {
		start = int(off) - size/2
		end = start + size
	}
	if start < 0 {
		end -= start
		start = 0
	}
	if end > len(data) {
		end = len(data)
	}
	if start > end {
		start = end
	}
	return strings.ToValidUTF8(string(data[start:end]), "")
}

// errorOffset returns the byte offset reported by JSON decode errors.
func errorOffset(err error) (int64, bool) {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset, true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset, true
	}
	return 0, false
}

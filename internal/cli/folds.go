package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/glance/internal/renderer/document"
)

// ErrInvalidFold is returned for a malformed --fold value.
var ErrInvalidFold = errors.New("invalid fold")

const defaultPlaceholder = "..."

// parseFold parses START:END[:PLACEHOLDER] into a collapsed fold.
func parseFold(s string) (document.FoldRegion, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return document.FoldRegion{}, fmt.Errorf("%w %q: want START:END[:PLACEHOLDER]", ErrInvalidFold, s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return document.FoldRegion{}, fmt.Errorf("%w %q: bad start", ErrInvalidFold, s)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return document.FoldRegion{}, fmt.Errorf("%w %q: bad end", ErrInvalidFold, s)
	}
	if start < 0 || end < start {
		return document.FoldRegion{}, fmt.Errorf("%w %q: need 0 <= START <= END", ErrInvalidFold, s)
	}

	placeholder := defaultPlaceholder
	if len(parts) == 3 {
		placeholder = parts[2]
	}
	return document.FoldRegion{Start: start, End: end, Collapsed: true, Placeholder: placeholder}, nil
}

func parseFolds(values []string) ([]document.FoldRegion, error) {
	folds := make([]document.FoldRegion, 0, len(values))
	for _, v := range values {
		f, err := parseFold(v)
		if err != nil {
			return nil, err
		}
		folds = append(folds, f)
	}
	return folds, nil
}

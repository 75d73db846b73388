package point

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotblauer/pareto/common"
)

// Parse reads a point back from its String form, "(v0, v1, ...)".
// Coordinates are parsed as floats and converted to T, matching how
// integer-coordinate containers promote values for distances.
func Parse[T common.Number](s string) (Point[T], error) {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "(") || !strings.HasSuffix(t, ")") {
		return nil, fmt.Errorf("point: %q is not parenthesized", s)
	}
	t = strings.TrimSpace(t[1 : len(t)-1])
	if t == "" {
		return Point[T]{}, nil
	}
	parts := strings.Split(t, ",")
	p := make(Point[T], 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("point: bad coordinate %q: %w", part, err)
		}
		p = append(p, T(f))
	}
	return p, nil
}

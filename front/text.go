package front

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rotblauer/pareto/index"
	"github.com/rotblauer/pareto/point"
	"github.com/tidwall/gjson"
)

var ErrDecodeFront = fmt.Errorf("could not decode as front elements")

// WriteText streams the front one element per line, point then value:
//
//	(1, 5) a
//	(2, 3) b
func (f *Front[T, V]) WriteText(w io.Writer) error {
	var werr error
	f.idx.Scan(func(el *index.Element[T, V]) bool {
		_, werr = fmt.Fprintf(w, "%s %v\n", el.Point.String(), el.Value)
		return werr == nil
	})
	return werr
}

// ReadText inserts elements parsed from the WriteText form. Values are
// decoded by parseValue from the text after the closing parenthesis.
// Lines whose point is dominated by the growing front are filtered like
// any other insert; reading a well-formed front back reproduces it.
func (f *Front[T, V]) ReadText(r io.Reader, parseValue func(string) (V, error)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		closing := strings.Index(line, ")")
		if closing < 0 {
			return fmt.Errorf("%w: no point in line %q", ErrDecodeFront, line)
		}
		p, err := point.Parse[T](line[:closing+1])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecodeFront, err)
		}
		v, err := parseValue(strings.TrimSpace(line[closing+1:]))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecodeFront, err)
		}
		if _, err := f.Insert(p, v); err != nil && !errors.Is(err, ErrDominated) {
			return err
		}
	}
	return scanner.Err()
}

type jsonElement[T any, V any] struct {
	Point []T `json:"point"`
	Value V   `json:"value"`
}

// MarshalJSON encodes the front as an array of {point, value} objects.
func (f *Front[T, V]) MarshalJSON() ([]byte, error) {
	els := f.Elements()
	out := make([]jsonElement[T, V], 0, len(els))
	for _, el := range els {
		out = append(out, jsonElement[T, V]{Point: el.Point, Value: el.Value})
	}
	return json.Marshal(out)
}

// UnmarshalJSON inserts elements from the MarshalJSON form into the
// front. The front keeps its direction and index; decoded points pass
// through the usual dominance filter.
func (f *Front[T, V]) UnmarshalJSON(data []byte) error {
	parsed := gjson.ParseBytes(bytes.TrimSpace(data))
	if !parsed.IsArray() {
		return fmt.Errorf("%w: expected a JSON array", ErrDecodeFront)
	}
	var outerErr error
	parsed.ForEach(func(_, item gjson.Result) bool {
		coords := item.Get("point")
		if !coords.IsArray() {
			outerErr = fmt.Errorf("%w: element without point: %s", ErrDecodeFront, item.Raw)
			return false
		}
		p := make(point.Point[T], 0, f.Dimensions())
		coords.ForEach(func(_, c gjson.Result) bool {
			p = append(p, T(c.Float()))
			return true
		})
		var v V
		if raw := item.Get("value"); raw.Exists() {
			if err := json.Unmarshal([]byte(raw.Raw), &v); err != nil {
				outerErr = fmt.Errorf("%w: bad value %s: %v", ErrDecodeFront, raw.Raw, err)
				return false
			}
		}
		if _, err := f.Insert(p, v); err != nil && !errors.Is(err, ErrDominated) {
			outerErr = err
			return false
		}
		return true
	})
	return outerErr
}

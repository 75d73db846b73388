package archive

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotblauer/pareto/front"
	"github.com/rotblauer/pareto/point"
	"github.com/tidwall/gjson"
)

// WriteText streams every front in rank order, one element per line.
func (a *Archive[T, V]) WriteText(w io.Writer) error {
	for _, f := range a.fronts {
		if err := f.WriteText(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadText admits elements parsed from the WriteText form through the
// usual cascade, re-deriving the layering.
func (a *Archive[T, V]) ReadText(r io.Reader, parseValue func(string) (V, error)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		closing := strings.Index(line, ")")
		if closing < 0 {
			return fmt.Errorf("%w: no point in line %q", front.ErrDecodeFront, line)
		}
		p, err := point.Parse[T](line[:closing+1])
		if err != nil {
			return fmt.Errorf("%w: %v", front.ErrDecodeFront, err)
		}
		v, err := parseValue(strings.TrimSpace(line[closing+1:]))
		if err != nil {
			return fmt.Errorf("%w: %v", front.ErrDecodeFront, err)
		}
		if _, err := a.Insert(p, v); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// MarshalJSON encodes the archive as an array of fronts, best rank first.
func (a *Archive[T, V]) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(a.fronts))
	for _, f := range a.fronts {
		data, err := f.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}

// UnmarshalJSON admits every element of the MarshalJSON form through the
// cascade; the stored layering is recomputed, not trusted.
func (a *Archive[T, V]) UnmarshalJSON(data []byte) error {
	parsed := gjson.ParseBytes(bytes.TrimSpace(data))
	if !parsed.IsArray() {
		return fmt.Errorf("%w: expected a JSON array of fronts", front.ErrDecodeFront)
	}
	var outerErr error
	parsed.ForEach(func(_, fr gjson.Result) bool {
		if !fr.IsArray() {
			outerErr = fmt.Errorf("%w: expected a JSON array front, got %s", front.ErrDecodeFront, fr.Raw)
			return false
		}
		fr.ForEach(func(_, item gjson.Result) bool {
			coords := item.Get("point")
			p := make(point.Point[T], 0, a.cfg.Dimensions)
			coords.ForEach(func(_, c gjson.Result) bool {
				p = append(p, T(c.Float()))
				return true
			})
			var v V
			if raw := item.Get("value"); raw.Exists() {
				if err := json.Unmarshal([]byte(raw.Raw), &v); err != nil {
					outerErr = fmt.Errorf("%w: bad value %s: %v", front.ErrDecodeFront, raw.Raw, err)
					return false
				}
			}
			if _, err := a.Insert(p, v); err != nil {
				outerErr = err
				return false
			}
			return true
		})
		return outerErr == nil
	})
	return outerErr
}

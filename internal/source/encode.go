package source

import (
	"fmt"
	"math"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// EncodeSample renders a sample as the JSON object a hub would send, with keys
// in sorted order. Text values become strings, and so do non-finite numbers.
func EncodeSample(s eeg.Sample) ([]byte, error) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := []byte(`{}`)
	for _, k := range keys {
		v := s[k]
		var val interface{} = v.String()
		if f, ok := v.Float(); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			val = f
		}
		var err error
		if out, err = sjson.SetBytes(out, gjson.Escape(k), val); err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
	}
	return out, nil
}

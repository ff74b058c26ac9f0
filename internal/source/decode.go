package source

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// ErrNotObject is returned for hub messages that are not a JSON object.
var ErrNotObject = errors.New("sample is not a json object")

// DecodeSample converts one hub message into a sample. Numbers become Number
// values, strings and booleans become Text, nested values keep their raw JSON
// text and nulls are treated as absent.
func DecodeSample(data []byte) (eeg.Sample, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid json")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNotObject
	}

	s := make(eeg.Sample)
	root.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
		case gjson.Number:
			s[key.String()] = eeg.Number(value.Num)
		case gjson.String:
			s[key.String()] = eeg.Text(value.Str)
		default:
			s[key.String()] = eeg.Text(value.Raw)
		}
		return true
	})
	return s, nil
}

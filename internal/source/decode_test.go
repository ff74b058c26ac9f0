package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

func TestDecodeSample(t *testing.T) {
	msg := []byte(`{
		"Left__alpha": 0.023955596666606627,
		"Right__p_bad": 0.12,
		"device": "hub-7",
		"artifact": true,
		"quality": null,
		"bands": [1, 2]
	}`)

	s, err := DecodeSample(msg)
	require.NoError(t, err)

	assert.InDelta(t, 0.023955596666606627, s.Float(eeg.FieldLeftAlpha, -1), 1e-15)
	assert.InDelta(t, 0.12, s.Float(eeg.FieldRightPBad, -1), 1e-15)
	assert.Equal(t, eeg.Text("hub-7"), s["device"])
	assert.Equal(t, eeg.Text("true"), s["artifact"])
	assert.Equal(t, eeg.Text("[1, 2]"), s["bands"])
	assert.NotContains(t, s, "quality")
	assert.Len(t, s, 5)
}

func TestDecodeSampleNumericString(t *testing.T) {
	s, err := DecodeSample([]byte(`{"Left__p_bad": "0.1"}`))
	require.NoError(t, err)

	assert.Equal(t, eeg.KindText, s[eeg.FieldLeftPBad].Kind())
	assert.False(t, eeg.Active(s))
}

func TestDecodeSampleErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{name: "garbage", msg: `{"Left__alpha": `},
		{name: "array", msg: `[1, 2, 3]`},
		{name: "number", msg: `42`},
		{name: "empty", msg: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSample([]byte(tt.msg))
			assert.Error(t, err)
		})
	}
}

func TestDecodeSampleEmptyObject(t *testing.T) {
	s, err := DecodeSample([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Equal(t, eeg.Calm, eeg.Read(s).Emotion)
}

func TestEncodeSample(t *testing.T) {
	s := eeg.Sample{
		eeg.FieldLeftAlpha: eeg.Number(0.25),
		"device":           eeg.Text("hub-7"),
		"time.ms":          eeg.Number(12),
	}
	data, err := EncodeSample(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Left__alpha": 0.25, "device": "hub-7", "time.ms": 12}`, string(data))

	back, err := DecodeSample(data)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestEncodeSampleEmpty(t *testing.T) {
	data, err := EncodeSample(eeg.Sample{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/music"
	"github.com/hubenschmidt/brainwave-radio/internal/radio"
)

func TestPromptDesire(t *testing.T) {
	var out bytes.Buffer
	desire := promptDesire(strings.NewReader("relaxed\n\n"), &out)
	sess := eeg.Session{Index: 2, Emotions: []eeg.Emotion{eeg.Happy, eeg.Calm}}

	got, err := desire(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "relaxed", got)
	assert.Contains(t, out.String(), "Session 2 detected emotions: Happy, Calm")
	assert.Contains(t, out.String(), "What emotion would you like to feel?")

	got, err = desire(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, got)

	// closed input answers blank
	got, err = desire(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPromptDesireCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := promptDesire(strings.NewReader("calm\n"), &bytes.Buffer{})(ctx, eeg.Session{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDesireFuncFixed(t *testing.T) {
	c := config{DesiredEmotion: "Sad"}
	got, err := c.desireFunc()(context.Background(), eeg.Session{})
	require.NoError(t, err)
	assert.Equal(t, "Sad", got)
}

func TestNewGenerator(t *testing.T) {
	c := config{Music: musicConfig{Engine: "tone"}}
	gen, err := newGenerator(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"tone"}, gen.Engines())

	c.Music.URL = "http://localhost:5200"
	c.Music.PoolSize = 2
	gen, err = newGenerator(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"musicgen", "tone"}, gen.Engines())

	c = config{Music: musicConfig{Engine: "musicgen"}}
	_, err = newGenerator(c)
	assert.True(t, errors.Is(err, music.ErrUnknownEngine))
}

func TestPrintEvents(t *testing.T) {
	var out bytes.Buffer
	emit := printEvents(&out)
	emit(radio.Event{Type: radio.EventSample, Active: true, Emotion: eeg.Calm})
	emit(radio.Event{Type: radio.EventSessionStarted, Session: 1})
	emit(radio.Event{Type: radio.EventSessionEnded, Session: 1, Samples: 3, Incomplete: true, Emotions: []eeg.Emotion{eeg.Calm}})
	emit(radio.Event{Type: radio.EventTrackReady, Track: "radios/session1_calm.wav", LatencyMs: 12})
	emit(radio.Event{Type: radio.EventCommunity, People: 4, Consensus: eeg.Happy})
	emit(radio.Event{Type: radio.EventError, Error: "boom"})

	assert.Equal(t, strings.Join([]string{
		"Session 1 started",
		"Session 1 ended after 3 samples (incomplete): Calm",
		"Saved radios/session1_calm.wav (12 ms)",
		"Community of 4 people feels Happy",
		"Error: boom",
	}, "\n")+"\n", out.String())
}

func TestPrintCommunity(t *testing.T) {
	dist, consensus, err := eeg.Aggregate([]eeg.Session{
		{Emotions: []eeg.Emotion{eeg.Sad}},
		{Emotions: []eeg.Emotion{eeg.Sad, eeg.Bored}},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	printCommunity(&out, &radio.CommunityResult{People: 2, Distribution: dist, Consensus: consensus, Track: "radios/community_sound.wav"})
	assert.Equal(t, "Total people: 2\nConsensus emotion: Sad\nDistribution: {Sad: 2, Bored: 1}\nCommunity track: radios/community_sound.wav\n", out.String())
}

func TestReportCommunityNoSessions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, reportCommunity(&out, nil, radio.ErrNoSessions))
	assert.Equal(t, "No sessions found in the stream.\n", out.String())

	boom := errors.New("read stream: reset")
	assert.ErrorIs(t, reportCommunity(&out, nil, boom), boom)
}

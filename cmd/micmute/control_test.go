package main

import (
	"bytes"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danondso/micmute/internal/mixer"
	"github.com/Danondso/micmute/internal/mixer/mixertest"
	"github.com/Danondso/micmute/internal/state"
)

func newTestController(t *testing.T) (*mixertest.Backend, *mixer.Controller) {
	t.Helper()
	b := mixertest.New()
	b.AddDevice(52, mixertest.Device{Name: "Built-in Microphone", Volume: 0.65})
	return b, mixer.New(b, nil)
}

func TestMuteThenUnmuteRestoresVolume(t *testing.T) {
	b, c := newTestController(t)
	store := state.NewStoreAt(filepath.Join(t.TempDir(), "state.toml"))
	discard := log.New(io.Discard, "", 0)

	var out bytes.Buffer
	require.NoError(t, applyMute(&out, c, store, true, discard))
	assert.Equal(t, "Built-in Microphone: muted\n", out.String())
	dev, _ := b.Device(52)
	assert.True(t, dev.Muted)
	assert.Zero(t, dev.Volume)

	out.Reset()
	require.NoError(t, applyMute(&out, c, store, false, discard))
	assert.Equal(t, "Built-in Microphone: live\n", out.String())
	dev, _ = b.Device(52)
	assert.False(t, dev.Muted)
	assert.InDelta(t, 0.65, dev.Volume, 0.0001)
}

func TestMuteWhenAlreadyMutedKeepsSavedVolume(t *testing.T) {
	b, c := newTestController(t)
	store := state.NewStoreAt(filepath.Join(t.TempDir(), "state.toml"))
	discard := log.New(io.Discard, "", 0)

	require.NoError(t, applyMute(io.Discard, c, store, true, discard))
	require.NoError(t, applyMute(io.Discard, c, store, true, discard))

	st, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(52), st.LastInputDevice)
	assert.InDelta(t, 0.65, st.LastVolume, 0.0001)

	require.NoError(t, applyMute(io.Discard, c, store, false, discard))
	dev, _ := b.Device(52)
	assert.InDelta(t, 0.65, dev.Volume, 0.0001)
}

func TestUnmuteWithoutSavedState(t *testing.T) {
	b := mixertest.New()
	b.AddDevice(52, mixertest.Device{Name: "Built-in Microphone", Muted: true})
	c := mixer.New(b, nil)
	store := state.NewStoreAt(filepath.Join(t.TempDir(), "state.toml"))

	var out bytes.Buffer
	require.NoError(t, applyMute(&out, c, store, false, log.New(io.Discard, "", 0)))
	assert.Equal(t, "Built-in Microphone: live\n", out.String())
	dev, _ := b.Device(52)
	assert.False(t, dev.Muted)
}

package proto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fenwick-systems/pcmcore/proto"
)

// Test_ScenarioE_ProtocolRoundTrip covers spec Scenario E.
func Test_ScenarioE_ProtocolRoundTrip(t *testing.T) {
	frame, err := proto.BuildFrame(0x22, nil)
	require.NoError(t, err)
	require.Len(t, frame, 7)
	assert.Equal(t, byte(0xAA), frame[0])
	assert.Equal(t, byte(0x22), frame[2])
	assert.Equal(t, byte(0x00), frame[3])
	assert.Equal(t, byte(0x00), frame[4])

	p := proto.NewParser()
	var got proto.Frame
	var found bool
	for _, b := range frame {
		if f, ok := p.PushByte(b); ok {
			got, found = f, true
		}
	}
	require.True(t, found)
	assert.Equal(t, uint8(0x22), got.Cmd)
	assert.Empty(t, got.Payload)
}

// Test_FramerNoiseTolerance covers spec property 5: a valid frame preceded
// and followed by arbitrary non-frame bytes yields exactly one event.
func Test_FramerNoiseTolerance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cmd := uint8(rapid.IntRange(0, 255).Draw(t, "cmd"))
		payload := rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "payload")
		frame, err := proto.BuildFrame(cmd, payload)
		require.NoError(t, err)

		prefix := rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "prefix")
		suffix := rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "suffix")

		stream := append(append(append([]byte{}, prefix...), frame...), suffix...)

		p := proto.NewParser()
		var frames []proto.Frame
		for _, b := range stream {
			if f, ok := p.PushByte(b); ok {
				frames = append(frames, f)
			}
		}

		require.Len(t, frames, 1)
		assert.Equal(t, cmd, frames[0].Cmd)
		assert.Equal(t, payload, frames[0].Payload)
	})
}

func Test_CorruptedCRCResetsParser(t *testing.T) {
	frame, err := proto.BuildFrame(0x01, []byte{1, 2, 3})
	require.NoError(t, err)
	frame[len(frame)-1] ^= 0xFF // corrupt CRC high byte

	p := proto.NewParser()
	var found bool
	for _, b := range frame {
		if _, ok := p.PushByte(b); ok {
			found = true
		}
	}
	assert.False(t, found)
	assert.Equal(t, uint32(1), p.FramingErrors())
}

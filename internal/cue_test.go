package internal

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/Eyevinn/adbreak-tools/common"
	"github.com/stretchr/testify/require"
)

// stubCodec encodes the event id and splice time so tests do not depend on
// the binary section layout.
type stubCodec struct {
	last SpliceCommand
	err  error
}

func (c *stubCodec) Encode(cmd SpliceCommand, providerID, providerName string) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.last = cmd
	out := make([]byte, 13)
	out[0] = 0xFC
	binary.BigEndian.PutUint32(out[1:], cmd.SpliceEventID)
	binary.BigEndian.PutUint64(out[5:], cmd.PTSTime)
	return out, nil
}

func (c *stubCodec) Decode(data []byte) (SpliceCommand, error) {
	return c.last, nil
}

func testBreak(id, adID string, offset, duration float64) ScheduledBreak {
	return ScheduledBreak{
		ID:              id,
		ResolvedTime:    testReference.Add(time.Duration(offset * float64(time.Second))),
		OffsetSeconds:   offset,
		DurationSeconds: duration,
		AdID:            adID,
		Name:            "Ad Break " + adID,
		ProviderID:      common.DefaultProviderID,
		ProviderName:    common.DefaultProviderName,
	}
}

func TestExtractEventID(t *testing.T) {
	cases := []struct {
		adID    string
		want    uint32
		wantErr bool
	}{
		{"ad42", 42, false},
		{"42", 42, false},
		{"ad-7", 7, false},
		{"AD_0001", 1, false},
		{"ad4294967295", 4294967295, false},
		{"ad4294967296", 0, true},
		{"adxx", 0, true},
		{"", 0, true},
		{"ad42x", 0, true},
	}
	for _, c := range cases {
		t.Run(c.adID, func(t *testing.T) {
			got, err := ExtractEventID(c.adID)
			if c.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestCueBuilderBuild(t *testing.T) {
	codec := &stubCodec{}
	builder := NewCueBuilder(codec, 0)

	cases := []struct {
		name    string
		br      ScheduledBreak
		variant CommandType
		ticks   uint64
		pts     uint64
	}{
		{"thirty_seconds", testBreak("b1", "ad42", 10, 30), SpliceInsert, 2700000, 900000},
		{"rounding_up", testBreak("b2", "7", 0, 1.0000056), SpliceInsert, 90001, 0},
		{"rounding_down", testBreak("b3", "7", 0, 1.0000044), TimeSignal, 90000, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cue, err := builder.Build(c.br, c.variant)
			require.NoError(t, err)
			cmd := cue.Command
			require.Equal(t, c.variant, cmd.Type)
			require.Equal(t, c.ticks, cmd.BreakDuration.DurationTicks)
			require.Equal(t, c.pts, cmd.PTSTime)
			require.True(t, cmd.BreakDuration.AutoReturn)
			require.True(t, cmd.OutOfNetworkIndicator)
			require.True(t, cmd.ProgramSpliceFlag)
			require.True(t, cmd.DurationFlag)
			require.False(t, cmd.SpliceImmediateFlag)
			require.False(t, cmd.SpliceEventCancelIndicator)
			if c.variant == SpliceInsert {
				require.Equal(t, &InsertFields{AvailNum: 1, AvailsExpected: 1}, cmd.Insert)
			} else {
				require.Nil(t, cmd.Insert)
			}
			require.Equal(t, codec.last, cmd)
			require.Equal(t, "0x1", cue.ProviderID)
			require.Equal(t, "YourProvider", cue.ProviderName)
			require.Len(t, cue.Payload, 13)
		})
	}
}

func TestCueBuilderPTSWraps(t *testing.T) {
	builder := NewCueBuilder(&stubCodec{}, common.PtsWrap-90000)
	cue, err := builder.Build(testBreak("b1", "ad1", 2, 30), SpliceInsert)
	require.NoError(t, err)
	require.Equal(t, uint64(90000), cue.Command.PTSTime)
}

func TestCueBuilderErrors(t *testing.T) {
	codecErr := errors.New("boom")
	cases := []struct {
		name    string
		codec   *stubCodec
		br      ScheduledBreak
		variant CommandType
	}{
		{"bad_ad_id", &stubCodec{}, testBreak("b1", "adxx", 0, 30), SpliceInsert},
		{"bad_variant", &stubCodec{}, testBreak("b1", "ad1", 0, 30), CommandType("splice_null")},
		{"zero_duration", &stubCodec{}, testBreak("b1", "ad1", 0, 0), SpliceInsert},
		{"huge_duration", &stubCodec{}, testBreak("b1", "ad1", 0, 100000), SpliceInsert},
		{"negative_offset", &stubCodec{}, testBreak("b1", "ad1", -1, 30), SpliceInsert},
		{"codec_failure", &stubCodec{err: codecErr}, testBreak("b1", "ad1", 0, 30), TimeSignal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewCueBuilder(c.codec, 0).Build(c.br, c.variant)
			var cbe *CueBuildError
			require.True(t, errors.As(err, &cbe))
			require.Equal(t, "b1", cbe.ID)
			if c.codec.err != nil {
				require.ErrorIs(t, err, codecErr)
			}
		})
	}
}

func TestCueBuilderBuildAll(t *testing.T) {
	breaks := []ScheduledBreak{testBreak("b1", "ad1", 10, 30), testBreak("b2", "ad2", 60, 15)}
	cues, err := NewCueBuilder(&stubCodec{}, 0).BuildAll(breaks, SpliceInsert)
	require.NoError(t, err)
	require.Len(t, cues, 2)
	require.Equal(t, breaks[0], cues[0].Break)
	require.Equal(t, uint32(2), cues[1].Cue.Command.SpliceEventID)

	breaks = append(breaks, testBreak("b3", "nope", 90, 15))
	_, err = NewCueBuilder(&stubCodec{}, 0).BuildAll(breaks, SpliceInsert)
	require.Error(t, err)
}

func TestCueRendering(t *testing.T) {
	cue := Cue{Payload: []byte{0xFC, 0x30, 0x11}}
	require.Equal(t, "fc3011", cue.Hex())
	require.Equal(t, "/DAR", cue.Base64())
}

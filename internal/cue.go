package internal

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/Eyevinn/adbreak-tools/common"
	"github.com/cockroachdb/errors"
)

type CommandType string

const (
	SpliceInsert CommandType = "splice_insert"
	TimeSignal   CommandType = "time_signal"
)

func ParseCommandType(s string) (CommandType, error) {
	switch CommandType(s) {
	case SpliceInsert, TimeSignal:
		return CommandType(s), nil
	case "":
		return SpliceInsert, nil
	}
	return "", errors.Newf("unknown cue type %q (splice_insert, time_signal)", s)
}

type BreakDuration struct {
	AutoReturn    bool   `json:"autoReturn"`
	DurationTicks uint64 `json:"durationTicks"`
}

// SpliceEvent holds the fields shared by both command variants.
type SpliceEvent struct {
	SpliceEventID              uint32        `json:"spliceEventId"`
	SpliceEventCancelIndicator bool          `json:"spliceEventCancelIndicator"`
	OutOfNetworkIndicator      bool          `json:"outOfNetworkIndicator"`
	ProgramSpliceFlag          bool          `json:"programSpliceFlag"`
	DurationFlag               bool          `json:"durationFlag"`
	SpliceImmediateFlag        bool          `json:"spliceImmediateFlag"`
	BreakDuration              BreakDuration `json:"breakDuration"`
	// 33-bit splice time in 90 kHz ticks
	PTSTime uint64 `json:"ptsTime"`
}

// InsertFields only exist on splice_insert.
type InsertFields struct {
	AvailNum       uint16 `json:"availNum"`
	AvailsExpected uint16 `json:"availsExpected"`
}

// SpliceCommand is the logical command handed to a Codec. Insert is set
// iff Type is SpliceInsert.
type SpliceCommand struct {
	Type CommandType `json:"type"`
	SpliceEvent
	Insert *InsertFields `json:"insert,omitempty"`
}

// Cue is a built command together with its encoded splice_info_section.
type Cue struct {
	Command      SpliceCommand
	ProviderID   string
	ProviderName string
	Payload      []byte
}

func (c Cue) Hex() string {
	return hex.EncodeToString(c.Payload)
}

func (c Cue) Base64() string {
	return base64.StdEncoding.EncodeToString(c.Payload)
}

type ScheduledCue struct {
	Break ScheduledBreak
	Cue   Cue
}

// Codec turns logical commands into binary splice_info_sections and back.
type Codec interface {
	Encode(cmd SpliceCommand, providerID, providerName string) ([]byte, error)
	Decode(data []byte) (SpliceCommand, error)
}

// ExtractEventID derives a splice_event_id from an ad id by dropping any
// leading non-digit characters, so "ad42" and "42" both give 42.
func ExtractEventID(adID string) (uint32, error) {
	digits := strings.TrimLeftFunc(adID, func(r rune) bool { return r < '0' || r > '9' })
	if digits == "" {
		return 0, errors.Newf("ad_id %q contains no numeric event id", adID)
	}
	id, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, errors.Newf("ad_id %q does not end in a 32-bit event id", adID)
	}
	return uint32(id), nil
}

type CueBuilder struct {
	codec     Codec
	ptsOrigin uint64
}

// NewCueBuilder creates a builder whose splice times are offsets from
// ptsOrigin on the 33-bit PTS clock.
func NewCueBuilder(codec Codec, ptsOrigin uint64) *CueBuilder {
	return &CueBuilder{codec: codec, ptsOrigin: ptsOrigin % common.PtsWrap}
}

// NewSpliceCommand fills in the fixed flags of an outgoing ad break.
func NewSpliceCommand(variant CommandType, eventID uint32, durationTicks, pts uint64) SpliceCommand {
	cmd := SpliceCommand{
		Type: variant,
		SpliceEvent: SpliceEvent{
			SpliceEventID:         eventID,
			OutOfNetworkIndicator: true,
			ProgramSpliceFlag:     true,
			DurationFlag:          true,
			BreakDuration:         BreakDuration{AutoReturn: true, DurationTicks: durationTicks},
			PTSTime:               pts,
		},
	}
	if variant == SpliceInsert {
		cmd.Insert = &InsertFields{AvailNum: 1, AvailsExpected: 1}
	}
	return cmd
}

func (b *CueBuilder) Build(br ScheduledBreak, variant CommandType) (Cue, error) {
	fail := func(reason string, err error) (Cue, error) {
		return Cue{}, &CueBuildError{ID: br.ID, AdID: br.AdID, Reason: reason, Err: err}
	}
	if variant != SpliceInsert && variant != TimeSignal {
		return fail("unknown command type "+string(variant), nil)
	}
	eventID, err := ExtractEventID(br.AdID)
	if err != nil {
		return fail("invalid event id", err)
	}
	if math.IsNaN(br.DurationSeconds) || br.DurationSeconds <= 0 {
		return fail("duration must be positive", nil)
	}
	durationTicks := common.SecondsToTicks(br.DurationSeconds)
	if durationTicks >= common.PtsWrap {
		return fail("duration does not fit in 33 bits", nil)
	}
	if math.IsNaN(br.OffsetSeconds) || math.IsInf(br.OffsetSeconds, 0) || br.OffsetSeconds < 0 {
		return fail("invalid offset", nil)
	}
	pts := common.AddPTS(b.ptsOrigin, common.SecondsToTicks(br.OffsetSeconds))

	cmd := NewSpliceCommand(variant, eventID, durationTicks, pts)
	payload, err := b.codec.Encode(cmd, br.ProviderID, br.ProviderName)
	if err != nil {
		return fail("encoding failed", err)
	}
	return Cue{Command: cmd, ProviderID: br.ProviderID, ProviderName: br.ProviderName, Payload: payload}, nil
}

// BuildAll builds one cue per break, keeping the schedule order.
func (b *CueBuilder) BuildAll(breaks []ScheduledBreak, variant CommandType) ([]ScheduledCue, error) {
	cues := make([]ScheduledCue, 0, len(breaks))
	for _, br := range breaks {
		cue, err := b.Build(br, variant)
		if err != nil {
			return nil, err
		}
		cues = append(cues, ScheduledCue{Break: br, Cue: cue})
	}
	return cues, nil
}

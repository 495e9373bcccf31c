package internal

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/Comcast/gots/v2"
	"github.com/Comcast/gots/v2/scte35"
	"github.com/cockroachdb/errors"
)

const (
	tableIDSpliceInfo = 0xFC
	// Provider Placement Opportunity Start
	segTypeProviderPOStart = scte35.SegDescType(0x34)
	defaultTier            = 0xFFF
)

// GotsCodec encodes and decodes splice_info_sections with gots. Encoded
// payloads start at table_id, without the PSI pointer field.
type GotsCodec struct{}

func NewGotsCodec() *GotsCodec {
	return &GotsCodec{}
}

// Encode builds a splice_insert, or a time_signal carrying a segmentation
// descriptor of type Provider Placement Opportunity Start. The provider
// fields have no place in the section and are carried by the Cue.
func (c *GotsCodec) Encode(cmd SpliceCommand, providerID, providerName string) ([]byte, error) {
	s := scte35.CreateSCTE35()
	s.SetTier(defaultTier)
	ev := cmd.SpliceEvent
	switch cmd.Type {
	case SpliceInsert:
		if cmd.Insert == nil {
			return nil, errors.New("splice_insert without avail fields")
		}
		if cmd.Insert.AvailNum > 0xFF || cmd.Insert.AvailsExpected > 0xFF {
			return nil, errors.Newf("avail_num %d / avails_expected %d do not fit in 8 bits",
				cmd.Insert.AvailNum, cmd.Insert.AvailsExpected)
		}
		ins := scte35.CreateSpliceInsertCommand()
		ins.SetEventID(ev.SpliceEventID)
		ins.SetIsEventCanceled(ev.SpliceEventCancelIndicator)
		ins.SetIsOut(ev.OutOfNetworkIndicator)
		ins.SetSpliceImmediate(ev.SpliceImmediateFlag)
		ins.SetAvailNum(uint8(cmd.Insert.AvailNum))
		ins.SetAvailsExpected(uint8(cmd.Insert.AvailsExpected))
		if ev.DurationFlag {
			ins.SetHasDuration(true)
			ins.SetDuration(gots.PTS(ev.BreakDuration.DurationTicks))
			ins.SetIsAutoReturn(ev.BreakDuration.AutoReturn)
		}
		if !ev.SpliceImmediateFlag {
			ins.SetHasPTS(true)
			ins.SetPTS(gots.PTS(ev.PTSTime))
		}
		s.SetCommandInfo(ins)
	case TimeSignal:
		ts := scte35.CreateTimeSignalCommand()
		ts.SetHasPTS(true)
		ts.SetPTS(gots.PTS(ev.PTSTime))
		s.SetCommandInfo(ts)

		desc := scte35.CreateSegmentationDescriptor()
		desc.SetEventID(ev.SpliceEventID)
		desc.SetIsEventCanceled(ev.SpliceEventCancelIndicator)
		desc.SetHasProgramSegmentation(ev.ProgramSpliceFlag)
		desc.SetIsDeliveryNotRestricted(true)
		desc.SetTypeID(segTypeProviderPOStart)
		if ev.DurationFlag {
			desc.SetHasDuration(true)
			desc.SetDuration(gots.PTS(ev.BreakDuration.DurationTicks))
		}
		s.SetDescriptors([]scte35.SegmentationDescriptor{desc})
	default:
		return nil, errors.Newf("unsupported command type %q", cmd.Type)
	}

	data := s.UpdateData()
	if len(data) > 1 && data[0] != tableIDSpliceInfo {
		// Drop pointer_field and any stuffing before table_id
		pointer := int(data[0])
		if 1+pointer < len(data) {
			data = data[1+pointer:]
		}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c *GotsCodec) Decode(data []byte) (SpliceCommand, error) {
	msg, err := parseSection(data)
	if err != nil {
		return SpliceCommand{}, err
	}
	return commandFromGots(msg)
}

func parseSection(data []byte) (scte35.SCTE35, error) {
	if len(data) == 0 {
		return nil, errors.New("empty splice_info_section")
	}
	if data[0] == tableIDSpliceInfo {
		data = append([]byte{0x00}, data...)
	}
	msg, err := scte35.NewSCTE35(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing splice_info_section")
	}
	return msg, nil
}

func commandFromGots(msg scte35.SCTE35) (SpliceCommand, error) {
	switch cmd := msg.CommandInfo().(type) {
	case scte35.SpliceInsertCommand:
		out := SpliceCommand{
			Type: SpliceInsert,
			SpliceEvent: SpliceEvent{
				SpliceEventID:              cmd.EventID(),
				SpliceEventCancelIndicator: cmd.IsEventCanceled(),
				OutOfNetworkIndicator:      cmd.IsOut(),
				// Component splices are never produced here
				ProgramSpliceFlag:   true,
				DurationFlag:        cmd.HasDuration(),
				SpliceImmediateFlag: cmd.SpliceImmediate(),
			},
			Insert: &InsertFields{
				AvailNum:       uint16(cmd.AvailNum()),
				AvailsExpected: uint16(cmd.AvailsExpected()),
			},
		}
		if cmd.HasDuration() {
			out.BreakDuration = BreakDuration{AutoReturn: cmd.IsAutoReturn(), DurationTicks: uint64(cmd.Duration())}
		}
		if cmd.HasPTS() {
			out.PTSTime = uint64(cmd.PTS())
		}
		return out, nil
	case nil:
		return SpliceCommand{}, errors.New("splice_info_section has no command")
	default:
		if msg.Command() != scte35.TimeSignal {
			return SpliceCommand{}, errors.Newf("unsupported splice command %s", getCommandType(cmd))
		}
		out := SpliceCommand{Type: TimeSignal, SpliceEvent: SpliceEvent{ProgramSpliceFlag: true}}
		if cmd.HasPTS() {
			out.PTSTime = uint64(cmd.PTS())
		}
		for _, desc := range msg.Descriptors() {
			out.SpliceEventID = desc.EventID()
			out.SpliceEventCancelIndicator = desc.IsEventCanceled()
			out.OutOfNetworkIndicator = isOutSegmentationType(desc.TypeID())
			if desc.HasDuration() {
				out.DurationFlag = true
				out.BreakDuration = BreakDuration{AutoReturn: true, DurationTicks: uint64(desc.Duration())}
			}
			if desc.TypeID() == segTypeProviderPOStart {
				break
			}
		}
		return out, nil
	}
}

// Segmentation types 0x22-0x3F come in start/end pairs with the start even.
func isOutSegmentationType(t scte35.SegDescType) bool {
	return t >= 0x22 && t <= 0x3F && t%2 == 0
}

// DecodeCueString accepts a cue as hex (with or without 0x) or base64.
func DecodeCueString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, errors.Wrap(err, "decoding hex cue")
		}
		return b, nil
	}
	if b, err := hex.DecodeString(s); err == nil && len(b) > 0 && b[0] == tableIDSpliceInfo {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "cue is neither hex nor base64")
	}
	return b, nil
}

type SCTE35Info struct {
	PID           uint16                   `json:"pid,omitempty"`
	SpliceCommand SpliceCommandInfo        `json:"spliceCommand"`
	SegDesc       []SegmentationDescriptor `json:"segmentationDes,omitempty"`
	Hex           string                   `json:"hex,omitempty"`
}

type SpliceCommandInfo struct {
	Type           string `json:"type"`
	EventId        uint32 `json:"eventId"`
	PTS            uint64 `json:"pts"`
	Duration       uint64 `json:"duration,omitempty"`
	Out            bool   `json:"outOfNetwork,omitempty"`
	Immediate      bool   `json:"immediate,omitempty"`
	AutoReturn     bool   `json:"autoReturn,omitempty"`
	AvailNum       uint8  `json:"availNum,omitempty"`
	AvailsExpected uint8  `json:"availsExpected,omitempty"`
}

type SegmentationDescriptor struct {
	SegmentNumber uint8  `json:"segmentNumber"`
	EventId       uint32 `json:"eventId"`
	Type          string `json:"type"`
	Duration      uint64 `json:"duration,omitempty"`
}

// DescribeCue returns the printable view of an encoded cue.
func DescribeCue(data []byte) (SCTE35Info, error) {
	msg, err := parseSection(data)
	if err != nil {
		return SCTE35Info{}, err
	}
	info := toSCTE35(0, msg)
	info.Hex = "0x" + hex.EncodeToString(data)
	return info, nil
}

func toSCTE35(pid uint16, msg scte35.SCTE35) SCTE35Info {
	scte35Info := SCTE35Info{PID: pid, SpliceCommand: toSpliceCommand(msg.CommandInfo())}

	if insert, ok := msg.CommandInfo().(scte35.SpliceInsertCommand); ok {
		scte35Info.SpliceCommand = toSpliceInsertCommand(insert)
	}
	for _, desc := range msg.Descriptors() {
		segDesc := toSegmentationDescriptor(desc)
		scte35Info.SegDesc = append(scte35Info.SegDesc, segDesc)
	}

	return scte35Info
}

func toSpliceCommand(spliceCommand scte35.SpliceCommand) SpliceCommandInfo {
	spliceCmd := SpliceCommandInfo{Type: getCommandType(spliceCommand)}
	if spliceCommand.HasPTS() {
		spliceCmd.PTS = uint64(spliceCommand.PTS())
	}

	return spliceCmd
}

func toSegmentationDescriptor(segdesc scte35.SegmentationDescriptor) SegmentationDescriptor {
	segDesc := SegmentationDescriptor{}
	segDesc.EventId = segdesc.EventID()
	segDesc.Type = scte35.SegDescTypeNames[segdesc.TypeID()]
	segDesc.SegmentNumber = segdesc.SegmentNumber()
	if segdesc.HasDuration() {
		segDesc.Duration = uint64(segdesc.Duration())
	}
	return segDesc
}

func toSpliceInsertCommand(spliceCommand scte35.SpliceInsertCommand) SpliceCommandInfo {
	spliceCmd := SpliceCommandInfo{Type: getCommandType(spliceCommand)}
	spliceCmd.EventId = spliceCommand.EventID()
	spliceCmd.Immediate = spliceCommand.SpliceImmediate()
	spliceCmd.Out = spliceCommand.IsOut()
	spliceCmd.AvailNum = spliceCommand.AvailNum()
	spliceCmd.AvailsExpected = spliceCommand.AvailsExpected()
	if spliceCommand.HasPTS() {
		spliceCmd.PTS = uint64(spliceCommand.PTS())
	}
	if spliceCommand.HasDuration() {
		spliceCmd.Duration = uint64(spliceCommand.Duration())
		spliceCmd.AutoReturn = spliceCommand.IsAutoReturn()
	}

	return spliceCmd
}

func getCommandType(spliceCommand scte35.SpliceCommand) string {
	return scte35.SpliceCommandTypeNames[spliceCommand.CommandType()]
}

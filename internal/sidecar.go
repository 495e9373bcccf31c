package internal

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/Eyevinn/adbreak-tools/common"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const sidecarTimeLayout = time.RFC3339Nano

type SidecarDocument struct {
	Version      string         `json:"version" yaml:"version"`
	ProviderID   string         `json:"provider_id" yaml:"provider_id"`
	ProviderName string         `json:"provider_name" yaml:"provider_name"`
	AdBreaks     []SidecarEntry `json:"ad_breaks" yaml:"ad_breaks"`
}

type SidecarEntry struct {
	ID            string  `json:"id" yaml:"id"`
	ScheduledTime string  `json:"scheduled_time" yaml:"scheduled_time"`
	OffsetSeconds float64 `json:"offset_seconds" yaml:"offset_seconds"`
	Duration      float64 `json:"duration" yaml:"duration"`
	AdID          string  `json:"ad_id" yaml:"ad_id"`
	Name          string  `json:"name" yaml:"name"`
	CueType       string  `json:"cue_type" yaml:"cue_type"`
	AutoReturn    bool    `json:"auto_return" yaml:"auto_return"`
	SpliceEventID uint32  `json:"splice_event_id" yaml:"splice_event_id"`
	DurationTicks uint64  `json:"duration_ticks" yaml:"duration_ticks"`
	PTSTime       uint64  `json:"pts_time" yaml:"pts_time"`
	ProviderID    string  `json:"provider_id" yaml:"provider_id"`
	ProviderName  string  `json:"provider_name" yaml:"provider_name"`
	Cue           string  `json:"cue" yaml:"cue"`
}

// Serialize builds a sidecar document from built cues, keeping their order.
func Serialize(cues []ScheduledCue, providerID, providerName string) SidecarDocument {
	if providerID == "" {
		providerID = common.DefaultProviderID
	}
	if providerName == "" {
		providerName = common.DefaultProviderName
	}
	doc := SidecarDocument{
		Version:      common.SidecarVersion,
		ProviderID:   providerID,
		ProviderName: providerName,
		AdBreaks:     make([]SidecarEntry, 0, len(cues)),
	}
	for _, sc := range cues {
		b, cmd := sc.Break, sc.Cue.Command
		doc.AdBreaks = append(doc.AdBreaks, SidecarEntry{
			ID:            b.ID,
			ScheduledTime: b.ResolvedTime.UTC().Format(sidecarTimeLayout),
			OffsetSeconds: b.OffsetSeconds,
			Duration:      b.DurationSeconds,
			AdID:          b.AdID,
			Name:          b.Name,
			CueType:       string(cmd.Type),
			AutoReturn:    cmd.BreakDuration.AutoReturn,
			SpliceEventID: cmd.SpliceEventID,
			DurationTicks: cmd.BreakDuration.DurationTicks,
			PTSTime:       cmd.PTSTime,
			ProviderID:    sc.Cue.ProviderID,
			ProviderName:  sc.Cue.ProviderName,
			Cue:           sc.Cue.Hex(),
		})
	}
	return doc
}

// Deserialize rebuilds scheduled cues from a sidecar document. The command
// is reconstructed from the entry fields, the payload from the hex cue.
func Deserialize(doc SidecarDocument) ([]ScheduledCue, error) {
	if doc.Version != common.SidecarVersion {
		return nil, errors.Newf("unsupported sidecar version %q (want %q)", doc.Version, common.SidecarVersion)
	}
	cues := make([]ScheduledCue, 0, len(doc.AdBreaks))
	for i, e := range doc.AdBreaks {
		resolved, err := time.Parse(sidecarTimeLayout, e.ScheduledTime)
		if err != nil {
			return nil, errors.Wrapf(err, "ad break %d: scheduled_time", i)
		}
		cueType, err := ParseCommandType(e.CueType)
		if err != nil {
			return nil, errors.Wrapf(err, "ad break %d", i)
		}
		payload, err := hex.DecodeString(strings.TrimPrefix(e.Cue, "0x"))
		if err != nil {
			return nil, errors.Wrapf(err, "ad break %d: cue", i)
		}
		providerID, providerName := e.ProviderID, e.ProviderName
		if providerID == "" {
			providerID = doc.ProviderID
		}
		if providerName == "" {
			providerName = doc.ProviderName
		}
		duration := e.Duration
		if duration == 0 {
			duration = common.TicksToSeconds(e.DurationTicks)
		}
		cmd := NewSpliceCommand(cueType, e.SpliceEventID, e.DurationTicks, e.PTSTime)
		cmd.BreakDuration.AutoReturn = e.AutoReturn
		cues = append(cues, ScheduledCue{
			Break: ScheduledBreak{
				ID:              e.ID,
				ResolvedTime:    resolved.UTC(),
				OffsetSeconds:   e.OffsetSeconds,
				DurationSeconds: duration,
				AdID:            e.AdID,
				Name:            e.Name,
				ProviderID:      providerID,
				ProviderName:    providerName,
			},
			Cue: Cue{Command: cmd, ProviderID: providerID, ProviderName: providerName, Payload: payload},
		})
	}
	return cues, nil
}

func WriteSidecar(w io.Writer, doc SidecarDocument, format BatchFormat) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encoding sidecar as yaml")
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encoding sidecar as json")
		}
		return nil
	}
}

func ReadSidecar(r io.Reader, format BatchFormat) (SidecarDocument, error) {
	var doc SidecarDocument
	data, err := io.ReadAll(r)
	if err != nil {
		return doc, errors.Wrap(err, "reading sidecar")
	}
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return doc, errors.Wrapf(err, "decoding sidecar as %s", format)
	}
	return doc, nil
}

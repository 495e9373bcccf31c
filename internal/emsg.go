package internal

import (
	"io"
	"math"

	"github.com/Eyevinn/adbreak-tools/common"
	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/cockroachdb/errors"
)

// EmsgBox wraps a cue in a version 1 emsg box for CMAF and DASH. The
// presentation time is the break offset in timescale units.
func EmsgBox(sc ScheduledCue, timescale uint32) (*mp4.EmsgBox, error) {
	if timescale == 0 {
		return nil, errors.New("emsg timescale must be positive")
	}
	ts := float64(timescale)
	duration := math.Round(sc.Break.DurationSeconds * ts)
	if duration > math.MaxUint32 {
		return nil, errors.Newf("ad break %q duration does not fit emsg event_duration", sc.Break.ID)
	}
	return &mp4.EmsgBox{
		Version:          1,
		TimeScale:        timescale,
		PresentationTime: uint64(math.Round(sc.Break.OffsetSeconds * ts)),
		EventDuration:    uint32(duration),
		ID:               sc.Cue.Command.SpliceEventID,
		SchemeIDURI:      common.SCTE35SchemeIDURI,
		Value:            "",
		MessageData:      sc.Cue.Payload,
	}, nil
}

// WriteEmsgBoxes writes one emsg box per cue, in order.
func WriteEmsgBoxes(w io.Writer, cues []ScheduledCue, timescale uint32) error {
	for _, sc := range cues {
		box, err := EmsgBox(sc, timescale)
		if err != nil {
			return err
		}
		if err := box.Encode(w); err != nil {
			return errors.Wrapf(err, "writing emsg for ad break %q", sc.Break.ID)
		}
	}
	return nil
}

package internal

import (
	"encoding/json"
	"fmt"
	"io"
)

type JsonPrinter struct {
	W        io.Writer
	Indent   bool
	AccError error
}

func (p *JsonPrinter) Print(data any, show bool) {
	if !show {
		return
	}
	var out []byte
	var err error
	if p.AccError != nil {
		return
	}
	if p.Indent {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		p.AccError = err
		return
	}
	_, p.AccError = fmt.Fprintln(p.W, string(out))
}

func (p *JsonPrinter) Error() error {
	return p.AccError
}

// CueView is the printable form of a scheduled cue.
type CueView struct {
	ID            string        `json:"id"`
	AdID          string        `json:"adId"`
	Name          string        `json:"name"`
	OffsetSeconds float64       `json:"offsetSeconds"`
	Command       SpliceCommand `json:"command"`
	Hex           string        `json:"hex"`
	Base64        string        `json:"base64"`
}

func (p *JsonPrinter) PrintCue(sc ScheduledCue, show bool) {
	p.Print(CueView{
		ID:            sc.Break.ID,
		AdID:          sc.Break.AdID,
		Name:          sc.Break.Name,
		OffsetSeconds: sc.Break.OffsetSeconds,
		Command:       sc.Cue.Command,
		Hex:           "0x" + sc.Cue.Hex(),
		Base64:        sc.Cue.Base64(),
	}, show)
}

// PrintPlacement prints one line per segment that received markers.
func (p *JsonPrinter) PrintPlacement(segments []PlaylistSegment, show bool) {
	type placement struct {
		URI          string   `json:"uri"`
		StartSeconds float64  `json:"startSeconds"`
		Cues         []string `json:"cues"`
	}
	for _, s := range segments {
		if len(s.Markers) == 0 {
			continue
		}
		pl := placement{URI: s.URI, StartSeconds: s.CumulativeStartSeconds}
		for _, m := range s.Markers {
			pl.Cues = append(pl.Cues, m.Break.ID)
		}
		p.Print(pl, show)
	}
}

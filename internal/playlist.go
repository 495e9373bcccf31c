package internal

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Eyevinn/hls-m3u8/m3u8"
	"github.com/cockroachdb/errors"
	slices "golang.org/x/exp/slices"
)

type MarkerStyle string

const (
	// #EXT-X-SCTE35:0x<hex>
	StyleXSCTE35 MarkerStyle = "x-scte35"
	// SCTE-67 #EXT-SCTE35 with a base64 cue
	StyleSCTE35 MarkerStyle = "scte35"
	// #EXT-X-DATERANGE with SCTE35-OUT
	StyleDateRange MarkerStyle = "daterange"
)

const (
	xSCTE35Tag   = "#EXT-X-SCTE35:"
	scte35Tag    = "#EXT-SCTE35:"
	dateRangeTag = "#EXT-X-DATERANGE:"
	dateRangeFmt = "2006-01-02T15:04:05.000Z07:00"
)

func ParseMarkerStyle(s string) (MarkerStyle, error) {
	switch MarkerStyle(s) {
	case StyleXSCTE35, StyleSCTE35, StyleDateRange:
		return MarkerStyle(s), nil
	case "":
		return StyleXSCTE35, nil
	}
	return "", errors.Newf("unknown marker style %q (x-scte35, scte35, daterange)", s)
}

// RenderMarker returns the playlist line for one cue.
func RenderMarker(style MarkerStyle, sc ScheduledCue) string {
	switch style {
	case StyleSCTE35:
		return fmt.Sprintf(`%sCUE="%s",ID="%s"`, scte35Tag, sc.Cue.Base64(), sc.Break.ID)
	case StyleDateRange:
		return fmt.Sprintf(`%sID="%s",START-DATE="%s",PLANNED-DURATION=%s,SCTE35-OUT=0x%s`,
			dateRangeTag, sc.Break.ID, sc.Break.ResolvedTime.UTC().Format(dateRangeFmt),
			strconv.FormatFloat(sc.Break.DurationSeconds, 'f', -1, 64), strings.ToUpper(sc.Cue.Hex()))
	default:
		return xSCTE35Tag + "0x" + sc.Cue.Hex()
	}
}

// markerTag carries all markers of one segment. hls-m3u8 keys segment tags
// by name, so several markers share one tag that renders one line each.
type markerTag struct {
	name  string
	lines []string
}

func (t *markerTag) TagName() string {
	return t.name
}

func (t *markerTag) Encode() *bytes.Buffer {
	if len(t.lines) == 0 {
		return nil
	}
	buf := new(bytes.Buffer)
	buf.WriteString(strings.Join(t.lines, "\n"))
	return buf
}

func (t *markerTag) String() string {
	return strings.Join(t.lines, "\n")
}

// xSCTE35Decoder keeps #EXT-X-SCTE35 lines already present in a playlist.
// hls-m3u8 keeps only the last tag per name and segment, so every decoded
// tag is also recorded here and regrouped after decoding.
type xSCTE35Decoder struct {
	decoded []*markerTag
}

func (d *xSCTE35Decoder) TagName() string {
	return xSCTE35Tag
}

func (d *xSCTE35Decoder) Decode(line string) (m3u8.CustomTag, error) {
	tag := &markerTag{name: xSCTE35Tag, lines: []string{strings.TrimSpace(line)}}
	d.decoded = append(d.decoded, tag)
	return tag, nil
}

func (d *xSCTE35Decoder) SegmentTag() bool {
	return true
}

// regroup gives each segment all tags decoded since the previous segment.
func (d *xSCTE35Decoder) regroup(segs []*m3u8.MediaSegment) {
	next := 0
	for _, seg := range segs {
		last, ok := seg.Custom[xSCTE35Tag].(*markerTag)
		if !ok {
			continue
		}
		pos := slices.Index(d.decoded, last)
		if pos < next {
			continue
		}
		merged := &markerTag{name: xSCTE35Tag}
		for _, t := range d.decoded[next : pos+1] {
			merged.lines = append(merged.lines, t.lines...)
		}
		seg.Custom[xSCTE35Tag] = merged
		next = pos + 1
	}
}

// MediaPlaylist wraps a decoded HLS media playlist.
type MediaPlaylist struct {
	pl *m3u8.MediaPlaylist
}

// ReadMediaPlaylist decodes an HLS media playlist. Master playlists are
// rejected.
func ReadMediaPlaylist(r io.Reader) (*MediaPlaylist, error) {
	dec := &xSCTE35Decoder{}
	p, listType, err := m3u8.DecodeWith(r, false, []m3u8.CustomDecoder{dec})
	if err != nil {
		return nil, errors.Wrap(err, "decoding playlist")
	}
	if listType != m3u8.MEDIA {
		return nil, errors.New("not a media playlist")
	}
	mp := &MediaPlaylist{pl: p.(*m3u8.MediaPlaylist)}
	dec.regroup(mp.segments())
	return mp, nil
}

func (m *MediaPlaylist) segments() []*m3u8.MediaSegment {
	segs := make([]*m3u8.MediaSegment, 0, len(m.pl.Segments))
	for _, s := range m.pl.Segments {
		if s != nil {
			segs = append(segs, s)
		}
	}
	return segs
}

// Segments returns the playlist segments laid out from time 0.
func (m *MediaPlaylist) Segments() []PlaylistSegment {
	segs := m.segments()
	uris := make([]string, len(segs))
	durations := make([]float64, len(segs))
	for i, s := range segs {
		uris[i] = s.URI
		durations[i] = s.Duration
	}
	return NewPlaylistSegments(uris, durations)
}

// ApplyMarkers writes the markers of each segment as tags before its
// #EXTINF line. segments must come from Segments of the same playlist.
//
// All marker lines of a segment go into one tag, after any #EXT-X-SCTE35
// lines read with the playlist, so their order is stable whatever the
// style. The daterange style also sets #EXT-X-PROGRAM-DATE-TIME on the
// first segment, unless the playlist has one, so that START-DATE can be
// mapped onto the media timeline.
func (m *MediaPlaylist) ApplyMarkers(segments []PlaylistSegment, style MarkerStyle) error {
	segs := m.segments()
	if len(segments) != len(segs) {
		return errors.Newf("got %d segments for a playlist with %d", len(segments), len(segs))
	}
	for i, s := range segments {
		if len(s.Markers) == 0 {
			continue
		}
		seg := segs[i]
		if seg.Custom == nil {
			seg.Custom = make(map[string]m3u8.CustomTag)
		}
		tag, ok := seg.Custom[xSCTE35Tag].(*markerTag)
		if !ok {
			tag = &markerTag{name: xSCTE35Tag}
			seg.Custom[xSCTE35Tag] = tag
		}
		for _, sc := range s.Markers {
			tag.lines = append(tag.lines, RenderMarker(style, sc))
		}
	}
	if style == StyleDateRange && len(segs) > 0 && segs[0].ProgramDateTime.IsZero() {
		if ref, ok := timelineOrigin(segments); ok {
			segs[0].ProgramDateTime = ref
		}
	}
	return nil
}

// timelineOrigin returns the wall-clock time of offset 0 as implied by the
// first marker with a resolved time.
func timelineOrigin(segments []PlaylistSegment) (time.Time, bool) {
	for _, s := range segments {
		for _, sc := range s.Markers {
			if sc.Break.ResolvedTime.IsZero() {
				continue
			}
			offset := time.Duration(math.Round(sc.Break.OffsetSeconds * float64(time.Second)))
			return sc.Break.ResolvedTime.Add(-offset).UTC(), true
		}
	}
	return time.Time{}, false
}

func (m *MediaPlaylist) Encode(w io.Writer) error {
	_, err := w.Write(m.pl.Encode().Bytes())
	return errors.Wrap(err, "writing playlist")
}

// PlaylistCue is an SCTE-35 cue found in a media playlist.
type PlaylistCue struct {
	Segment       int         `json:"segment"`
	URI           string      `json:"uri"`
	StartSeconds  float64     `json:"startSeconds"`
	Tag           string      `json:"tag"`
	Cue           string      `json:"cue"`
	SCTE35        *SCTE35Info `json:"scte35,omitempty"`
	DecodeFailure string      `json:"decodeError,omitempty"`
}

// Cues lists the SCTE-35 cues carried by #EXT-X-SCTE35 and SCTE-67 tags.
func (m *MediaPlaylist) Cues() []PlaylistCue {
	var cues []PlaylistCue
	segs := m.segments()
	layout := m.Segments()
	for i, seg := range segs {
		add := func(tag, cue string) {
			pc := PlaylistCue{Segment: i, URI: seg.URI, StartSeconds: layout[i].CumulativeStartSeconds, Tag: tag, Cue: cue}
			data, err := DecodeCueString(cue)
			if err == nil {
				var info SCTE35Info
				info, err = DescribeCue(data)
				if err == nil {
					pc.SCTE35 = &info
				}
			}
			if err != nil {
				pc.DecodeFailure = err.Error()
			}
			cues = append(cues, pc)
		}
		if seg.SCTE != nil && seg.SCTE.Cue != "" {
			add(scte35Tag, seg.SCTE.Cue)
		}
		if tag, ok := seg.Custom[xSCTE35Tag].(*markerTag); ok {
			for _, line := range tag.lines {
				if cue, ok := strings.CutPrefix(line, xSCTE35Tag); ok {
					add(xSCTE35Tag, cue)
				}
			}
		}
	}
	return cues
}

// InjectPlaylist reads a media playlist from r, places cues and writes the
// result to w. On placement errors nothing is written unless allowUnplaced
// is set; the error is returned in both cases.
func InjectPlaylist(r io.Reader, w io.Writer, cues []ScheduledCue, style MarkerStyle, allowUnplaced bool) ([]PlaylistSegment, error) {
	pl, err := ReadMediaPlaylist(r)
	if err != nil {
		return nil, err
	}
	placed, injectErr := Inject(pl.Segments(), cues)
	if injectErr != nil && !allowUnplaced {
		return placed, injectErr
	}
	if err := pl.ApplyMarkers(placed, style); err != nil {
		return placed, err
	}
	if err := pl.Encode(w); err != nil {
		return placed, err
	}
	return placed, injectErr
}

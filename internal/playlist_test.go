package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:6.000,
seg0.ts
#EXTINF:6.000,
seg1.ts
#EXTINF:6.000,
seg2.ts
#EXTINF:6.000,
seg3.ts
#EXT-X-ENDLIST
`

const testMasterPlaylist = `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=640x360
low.m3u8
`

// linesBefore returns the lines between the URI lines prev and uri.
func linesBetween(t *testing.T, text, prev, uri string) []string {
	t.Helper()
	lines := strings.Split(text, "\n")
	start, end := -1, -1
	for i, l := range lines {
		switch l {
		case prev:
			start = i
		case uri:
			end = i
		}
	}
	require.True(t, start >= 0 && end > start, "segments %s and %s not found in\n%s", prev, uri, text)
	return lines[start+1 : end]
}

func gotsCue(t *testing.T, id, adID string, offset float64) ScheduledCue {
	t.Helper()
	br := testBreak(id, adID, offset, 30)
	cue, err := NewCueBuilder(NewGotsCodec(), 0).Build(br, SpliceInsert)
	require.NoError(t, err)
	return ScheduledCue{Break: br, Cue: cue}
}

func TestRenderMarker(t *testing.T) {
	sc := ScheduledCue{
		Break: ScheduledBreak{ID: "b1", ResolvedTime: time.Date(2024, 1, 1, 12, 0, 13, 0, time.UTC), DurationSeconds: 30},
		Cue:   Cue{Payload: []byte{0xFC, 0x30, 0x11}},
	}
	cases := []struct {
		style    MarkerStyle
		expected string
	}{
		{StyleXSCTE35, "#EXT-X-SCTE35:0xfc3011"},
		{StyleSCTE35, `#EXT-SCTE35:CUE="/DAR",ID="b1"`},
		{StyleDateRange, `#EXT-X-DATERANGE:ID="b1",START-DATE="2024-01-01T12:00:13.000Z",PLANNED-DURATION=30,SCTE35-OUT=0xFC3011`},
	}
	for _, c := range cases {
		t.Run(string(c.style), func(t *testing.T) {
			require.Equal(t, c.expected, RenderMarker(c.style, sc))
		})
	}
}

func TestParseMarkerStyle(t *testing.T) {
	s, err := ParseMarkerStyle("")
	require.NoError(t, err)
	require.Equal(t, StyleXSCTE35, s)
	s, err = ParseMarkerStyle("daterange")
	require.NoError(t, err)
	require.Equal(t, StyleDateRange, s)
	_, err = ParseMarkerStyle("cue-out")
	require.Error(t, err)
}

func TestReadMediaPlaylist(t *testing.T) {
	pl, err := ReadMediaPlaylist(strings.NewReader(testPlaylist))
	require.NoError(t, err)
	segs := pl.Segments()
	require.Len(t, segs, 4)
	require.Equal(t, "seg3.ts", segs[3].URI)
	require.Equal(t, 18.0, segs[3].CumulativeStartSeconds)

	_, err = ReadMediaPlaylist(strings.NewReader(testMasterPlaylist))
	require.Error(t, err)
}

func TestInjectPlaylist(t *testing.T) {
	first := gotsCue(t, "b1", "ad1", 13)
	second := gotsCue(t, "b2", "ad2", 14)
	third := gotsCue(t, "b3", "ad3", 6)

	var out bytes.Buffer
	placed, err := InjectPlaylist(strings.NewReader(testPlaylist), &out, []ScheduledCue{first, second, third}, StyleXSCTE35, false)
	require.NoError(t, err)
	require.Len(t, placed, 4)

	text := out.String()
	between := linesBetween(t, text, "seg2.ts", "seg3.ts")
	require.Contains(t, between, RenderMarker(StyleXSCTE35, first))
	require.Contains(t, between, RenderMarker(StyleXSCTE35, second))
	require.Less(t, indexOf(between, RenderMarker(StyleXSCTE35, first)), indexOf(between, RenderMarker(StyleXSCTE35, second)))
	require.Contains(t, linesBetween(t, text, "seg0.ts", "seg1.ts"), RenderMarker(StyleXSCTE35, third))
	require.Equal(t, 3, strings.Count(text, "#EXT-X-SCTE35:"))

	// The injected markers can be read back
	pl, err := ReadMediaPlaylist(strings.NewReader(text))
	require.NoError(t, err)
	cues := pl.Cues()
	require.Len(t, cues, 3)
	require.Equal(t, 1, cues[0].Segment)
	require.Equal(t, 3, cues[1].Segment)
	require.Equal(t, 18.0, cues[1].StartSeconds)
	require.NotNil(t, cues[1].SCTE35)
	require.Equal(t, uint32(1), cues[1].SCTE35.SpliceCommand.EventId)
}

func TestInjectPlaylistDateRange(t *testing.T) {
	cue := gotsCue(t, "b1", "ad1", 12)
	var out bytes.Buffer
	_, err := InjectPlaylist(strings.NewReader(testPlaylist), &out, []ScheduledCue{cue}, StyleDateRange, false)
	require.NoError(t, err)
	between := linesBetween(t, out.String(), "seg1.ts", "seg2.ts")
	require.Contains(t, between, RenderMarker(StyleDateRange, cue))

	lines := strings.Split(out.String(), "\n")
	pdt := indexOf(lines, "#EXT-X-PROGRAM-DATE-TIME:2024-01-01T12:00:00Z")
	require.NotEqual(t, -1, pdt, "program date time is missing")
	require.Less(t, pdt, indexOf(lines, "seg0.ts"))
}

func TestInjectPlaylistDateRangeKeepsProgramDateTime(t *testing.T) {
	input := strings.Replace(testPlaylist, "#EXTINF:6.000,\nseg0.ts",
		"#EXT-X-PROGRAM-DATE-TIME:2023-06-01T08:00:00Z\n#EXTINF:6.000,\nseg0.ts", 1)
	var out bytes.Buffer
	_, err := InjectPlaylist(strings.NewReader(input), &out, []ScheduledCue{gotsCue(t, "b1", "ad1", 12)}, StyleDateRange, false)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(out.String(), "#EXT-X-PROGRAM-DATE-TIME:"))
	require.Contains(t, out.String(), "#EXT-X-PROGRAM-DATE-TIME:2023-06-01T08:00:00Z")
}

func TestInjectPlaylistMarkerOrder(t *testing.T) {
	existing := RenderMarker(StyleXSCTE35, gotsCue(t, "old", "ad9", 6))
	input := strings.Replace(testPlaylist, "#EXTINF:6.000,\nseg1.ts", existing+"\n#EXTINF:6.000,\nseg1.ts", 1)
	cue := gotsCue(t, "b1", "ad1", 6)

	for _, style := range []MarkerStyle{StyleSCTE35, StyleDateRange} {
		t.Run(string(style), func(t *testing.T) {
			expected := []string{existing, RenderMarker(style, cue)}
			// Map iteration in the writer would show up as a changing order.
			for i := 0; i < 20; i++ {
				var out bytes.Buffer
				_, err := InjectPlaylist(strings.NewReader(input), &out, []ScheduledCue{cue}, style, false)
				require.NoError(t, err)
				between := linesBetween(t, out.String(), "seg0.ts", "seg1.ts")
				require.Len(t, between, 3)
				require.Equal(t, expected, between[:2])
				require.True(t, strings.HasPrefix(between[2], "#EXTINF:"))
			}
		})
	}
}

func TestInjectPlaylistUnplaced(t *testing.T) {
	cues := []ScheduledCue{gotsCue(t, "b1", "ad1", 6), gotsCue(t, "b2", "ad2", 30)}

	var out bytes.Buffer
	_, err := InjectPlaylist(strings.NewReader(testPlaylist), &out, cues, StyleXSCTE35, false)
	var perr *PlacementError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "b2", perr.ID)
	require.Zero(t, out.Len(), "nothing should be written")

	out.Reset()
	_, err = InjectPlaylist(strings.NewReader(testPlaylist), &out, cues, StyleXSCTE35, true)
	require.Error(t, err)
	require.Equal(t, 1, strings.Count(out.String(), "#EXT-X-SCTE35:"))
}

func indexOf(lines []string, s string) int {
	for i, l := range lines {
		if l == s {
			return i
		}
	}
	return -1
}

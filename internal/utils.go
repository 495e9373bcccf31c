package internal

import (
	"context"
	"io"
	"os"

	"github.com/Comcast/gots/v2/psi"
	"github.com/asticode/go-astits"
	"github.com/cockroachdb/errors"
)

// Options control what the TS probe prints.
type Options struct {
	Indent         bool
	ShowStreamInfo bool
	ShowService    bool
	ShowSCTE35     bool
	MaxCues        int
}

type RunableFunc func(ctx context.Context, w io.Writer, f io.Reader, o Options) error

type ElementaryStreamInfo struct {
	PID   uint16 `json:"pid"`
	Codec string `json:"codec"`
	Type  string `json:"type"`
}

func ParseAstitsElementaryStreamInfo(es *astits.PMTElementaryStream) *ElementaryStreamInfo {
	var streamInfo *ElementaryStreamInfo
	switch es.StreamType {
	case astits.StreamTypeH264Video:
		streamInfo = &ElementaryStreamInfo{PID: es.ElementaryPID, Codec: "AVC", Type: "video"}
	case astits.StreamTypeAACAudio:
		streamInfo = &ElementaryStreamInfo{PID: es.ElementaryPID, Codec: "AAC", Type: "audio"}
	case astits.StreamTypeH265Video:
		streamInfo = &ElementaryStreamInfo{PID: es.ElementaryPID, Codec: "HEVC", Type: "video"}
	case astits.StreamTypeSCTE35:
		streamInfo = &ElementaryStreamInfo{PID: es.ElementaryPID, Codec: "SCTE35", Type: "cue"}
	}

	return streamInfo
}

func ParseElementaryStreamInfo(es psi.PmtElementaryStream) *ElementaryStreamInfo {
	pid := uint16(es.ElementaryPid())
	var streamInfo *ElementaryStreamInfo
	switch es.StreamType() {
	case psi.PmtStreamTypeMpeg4VideoH264:
		streamInfo = &ElementaryStreamInfo{PID: pid, Codec: "AVC", Type: "video"}
	case psi.PmtStreamTypeAac:
		streamInfo = &ElementaryStreamInfo{PID: pid, Codec: "AAC", Type: "audio"}
	case psi.PmtStreamTypeMpeg4VideoH265:
		streamInfo = &ElementaryStreamInfo{PID: pid, Codec: "HEVC", Type: "video"}
	case psi.PmtStreamTypeScte35:
		streamInfo = &ElementaryStreamInfo{PID: pid, Codec: "SCTE35", Type: "cue"}
	}

	return streamInfo
}

// OpenInput opens a file for reading, or stdin for "-".
func OpenInput(name string) (io.ReadCloser, error) {
	if name == "-" || name == "" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	return fh, nil
}

// CreateOutput creates (or truncates) a file for writing, or stdout for "-".
func CreateOutput(name string) (io.WriteCloser, error) {
	if name == "-" || name == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	fo, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "creating output file %s", name)
	}
	return fo, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Execute opens inFile and runs function on it.
func Execute(ctx context.Context, w io.Writer, o Options, inFile string, function RunableFunc) error {
	f, err := OpenInput(inFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return function(ctx, w, f, o)
}

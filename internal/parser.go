package internal

import (
	"bufio"
	"context"
	"io"

	"github.com/Comcast/gots/v2/packet"
	"github.com/Comcast/gots/v2/psi"
	"github.com/Comcast/gots/v2/scte35"
	"github.com/Eyevinn/adbreak-tools/common"
	"github.com/asticode/go-astits"
	"github.com/cockroachdb/errors"
)

// ParseInfo prints the elementary streams of the first PMT and, with
// ShowService, the services of the first SDT.
func ParseInfo(ctx context.Context, w io.Writer, f io.Reader, o Options) error {
	rd := bufio.NewReaderSize(f, 1000*common.PacketSize)
	dmx := astits.NewDemuxer(ctx, rd)
	jp := &JsonPrinter{W: w, Indent: o.Indent}
	pmtPrinted := false
	sdtPrinted := !o.ShowService
dataLoop:
	for !pmtPrinted || !sdtPrinted {
		// Check if context was cancelled
		select {
		case <-ctx.Done():
			break dataLoop
		default:
		}

		d, err := dmx.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) {
				break dataLoop
			}
			return errors.Wrap(err, "reading next data")
		}

		if d.SDT != nil && !sdtPrinted {
			jp.PrintServiceInfo(d.SDT, o.ShowService)
			sdtPrinted = true
		}
		if d.PMT != nil && !pmtPrinted {
			for _, es := range d.PMT.ElementaryStreams {
				streamInfo := ParseAstitsElementaryStreamInfo(es)
				if streamInfo != nil {
					jp.Print(streamInfo, o.ShowStreamInfo)
				}
			}
			pmtPrinted = true
		}
	}

	return jp.Error()
}

// ParseSCTE35 prints every splice_info_section found on SCTE-35 PIDs.
func ParseSCTE35(ctx context.Context, w io.Writer, f io.Reader, o Options) error {
	reader := bufio.NewReader(f)
	_, err := packet.Sync(reader)
	if err != nil {
		return errors.Wrap(err, "syncing with reader")
	}
	pat, err := psi.ReadPAT(reader)
	if err != nil {
		return errors.Wrap(err, "reading PAT")
	}

	var pmts []psi.PMT
	pm := pat.ProgramMap()
	for _, pid := range pm {
		pmt, err := psi.ReadPMT(reader, pid)
		if err != nil {
			return errors.Wrap(err, "reading PMT")
		}
		pmts = append(pmts, pmt)
	}

	jp := &JsonPrinter{W: w, Indent: o.Indent}
	scte35PIDs := make(map[int]bool)
	for _, pmt := range pmts {
		for _, es := range pmt.ElementaryStreams() {
			streamInfo := ParseElementaryStreamInfo(es)
			if streamInfo != nil {
				if streamInfo.Codec == "SCTE35" {
					scte35PIDs[es.ElementaryPid()] = true
				}

				jp.Print(streamInfo, o.ShowStreamInfo)
			}
		}
	}

	nrCues := 0
	for {
		select {
		case <-ctx.Done():
			return jp.Error()
		default:
		}

		var pkt packet.Packet
		if _, err := io.ReadFull(reader, pkt[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return errors.Wrap(err, "reading packet")
		}

		currPID := packet.Pid(&pkt)
		if !scte35PIDs[currPID] || !packet.PayloadUnitStartIndicator(&pkt) {
			continue
		}
		pay, err := packet.Payload(&pkt)
		if err != nil {
			return errors.Wrapf(err, "getting payload for packet on PID %d", currPID)
		}
		msg, err := scte35.NewSCTE35(pay)
		if err != nil {
			return errors.Wrapf(err, "parsing SCTE35 on PID %d", currPID)
		}
		jp.Print(toSCTE35(uint16(currPID), msg), o.ShowSCTE35)
		nrCues++
		if o.MaxCues > 0 && nrCues >= o.MaxCues {
			break
		}
	}

	return jp.Error()
}

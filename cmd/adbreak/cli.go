package main

import (
	"bytes"
	"time"

	"github.com/Eyevinn/adbreak-tools/internal"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// batchOptions select and interpret an ad-break batch.
type batchOptions struct {
	format    string
	reference string
}

func (o *batchOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "input-format", "", "batch format (json, yaml); guessed from the file name when empty")
	cmd.Flags().StringVar(&o.reference, "reference-time", "", "reference instant for offsets and relative times (default now)")
}

// cueOptions select the splice command and its PTS origin.
type cueOptions struct {
	cueType   string
	ptsOrigin uint64
}

func (o *cueOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.cueType, "type", "", "splice command (splice_insert, time_signal); overrides ADBREAK_CUE_TYPE")
	cmd.Flags().Uint64Var(&o.ptsOrigin, "pts-origin", 0, "PTS of offset zero in 90 kHz ticks; overrides ADBREAK_PTS_ORIGIN")
}

func (a *app) timeParser() (*internal.TimeParser, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return internal.NewTimeParser(loc), nil
}

// referenceTime resolves the --reference-time flag. An empty value is the
// current time; a number is seconds from now.
func (a *app) referenceTime(parser *internal.TimeParser, s string) (time.Time, error) {
	now := a.clock.Now()
	if s == "" {
		return now, nil
	}
	ref, err := parser.Parse(s, now)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "--reference-time")
	}
	return ref, nil
}

// loadBatch reads ad-break records and fills provider fields that the
// records leave out from the configuration.
func (a *app) loadBatch(path string, o batchOptions) ([]internal.AdBreakRequest, error) {
	format := internal.FormatFromPath(path)
	if o.format != "" {
		var err error
		if format, err = internal.ParseBatchFormat(o.format); err != nil {
			return nil, err
		}
	}
	f, err := internal.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := internal.LoadAdBreaks(f, format)
	if err != nil {
		return nil, err
	}
	a.providerDefaults(records)
	a.logger.Debug().Str("input", path).Int("records", len(records)).Msg("loaded ad breaks")
	return records, nil
}

func (a *app) providerDefaults(records []internal.AdBreakRequest) {
	for i := range records {
		if records[i].ProviderID == nil {
			records[i].ProviderID = &a.cfg.ProviderID
		}
		if records[i].ProviderName == nil {
			records[i].ProviderName = &a.cfg.ProviderName
		}
	}
}

func (a *app) schedule(path string, o batchOptions) (internal.Schedule, error) {
	records, err := a.loadBatch(path, o)
	if err != nil {
		return internal.Schedule{}, err
	}
	return a.scheduleRecords(records, o.reference)
}

func (a *app) scheduleRecords(records []internal.AdBreakRequest, referenceFlag string) (internal.Schedule, error) {
	parser, err := a.timeParser()
	if err != nil {
		return internal.Schedule{}, err
	}
	scheduler := internal.NewScheduler(parser, a.clock, a.logger)
	if referenceFlag == "" {
		return scheduler.ScheduleNow(records)
	}
	reference, err := a.referenceTime(parser, referenceFlag)
	if err != nil {
		return internal.Schedule{}, err
	}
	return scheduler.Schedule(records, reference)
}

func (a *app) cueBuilder(cmd *cobra.Command, o cueOptions) (*internal.CueBuilder, internal.CommandType, error) {
	cueType := a.cfg.CueType
	if o.cueType != "" {
		cueType = o.cueType
	}
	variant, err := internal.ParseCommandType(cueType)
	if err != nil {
		return nil, "", err
	}
	ptsOrigin := a.cfg.PTSOrigin
	if cmd.Flags().Changed("pts-origin") {
		ptsOrigin = o.ptsOrigin
	}
	return internal.NewCueBuilder(internal.NewGotsCodec(), ptsOrigin), variant, nil
}

func (a *app) buildCues(cmd *cobra.Command, path string, bo batchOptions, co cueOptions) ([]internal.ScheduledCue, error) {
	sched, err := a.schedule(path, bo)
	if err != nil {
		return nil, err
	}
	builder, variant, err := a.cueBuilder(cmd, co)
	if err != nil {
		return nil, err
	}
	cues, err := builder.BuildAll(sched.Breaks, variant)
	if err != nil {
		return nil, err
	}
	a.logger.Info().
		Int("cues", len(cues)).
		Int("pastDue", len(sched.PastDue)).
		Str("type", string(variant)).
		Msg("built cues")
	return cues, nil
}

// loadSidecar reads a sidecar document and rebuilds its cues.
func (a *app) loadSidecar(path, format string) ([]internal.ScheduledCue, error) {
	bf := internal.FormatFromPath(path)
	if format != "" {
		var err error
		if bf, err = internal.ParseBatchFormat(format); err != nil {
			return nil, err
		}
	}
	f, err := internal.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := internal.ReadSidecar(f, bf)
	if err != nil {
		return nil, err
	}
	return internal.Deserialize(doc)
}

// writeOutput writes data to path, or stdout for "-". Nothing is created
// when data is empty and the target is a file.
func (a *app) writeOutput(path string, data []byte) (err error) {
	if path == "" || path == "-" {
		_, err = a.stdout.Write(data)
		return err
	}
	if len(data) == 0 {
		return nil
	}
	w, err := internal.CreateOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()
	if _, err = bytes.NewReader(data).WriteTo(w); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

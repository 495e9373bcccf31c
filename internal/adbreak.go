package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/Eyevinn/adbreak-tools/common"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// TimeSpec is a scheduled_time value. Numbers in the input are kept as
// their decimal text so that they go through the same parser as strings.
type TimeSpec string

func (t *TimeSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TimeSpec(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Newf("scheduled_time must be a string or a number, got %s", string(data))
	}
	*t = TimeSpec(n.String())
	return nil
}

func (t *TimeSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf("line %d: scheduled_time must be a scalar", node.Line)
	}
	*t = TimeSpec(node.Value)
	return nil
}

// AdBreakRequest is one loosely typed ad-break record. Pointer fields are
// nil when the field was absent.
type AdBreakRequest struct {
	ID            *string   `json:"id,omitempty" yaml:"id,omitempty"`
	AdID          *string   `json:"ad_id,omitempty" yaml:"ad_id,omitempty"`
	ScheduledTime *TimeSpec `json:"scheduled_time,omitempty" yaml:"scheduled_time,omitempty"`
	Duration      *float64  `json:"duration,omitempty" yaml:"duration,omitempty"`
	Name          *string   `json:"name,omitempty" yaml:"name,omitempty"`
	ProviderID    *string   `json:"provider_id,omitempty" yaml:"provider_id,omitempty"`
	ProviderName  *string   `json:"provider_name,omitempty" yaml:"provider_name,omitempty"`

	// Invalid maps a field name to the reason it could not be decoded.
	Invalid map[string]string `json:"-" yaml:"-"`
}

// NewAdBreakRequest creates a record with all required fields set.
func NewAdBreakRequest(id, adID, scheduledTime string, duration float64) AdBreakRequest {
	ts := TimeSpec(scheduledTime)
	return AdBreakRequest{ID: &id, AdID: &adID, ScheduledTime: &ts, Duration: &duration}
}

func (r AdBreakRequest) name() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	return "Ad Break " + deref(r.AdID)
}

func (r AdBreakRequest) providerID() string {
	if r.ProviderID != nil && *r.ProviderID != "" {
		return *r.ProviderID
	}
	return common.DefaultProviderID
}

func (r AdBreakRequest) providerName() string {
	if r.ProviderName != nil && *r.ProviderName != "" {
		return *r.ProviderName
	}
	return common.DefaultProviderName
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BatchFormat selects the encoding of ad-break batches and sidecars.
type BatchFormat string

const (
	FormatJSON BatchFormat = "json"
	FormatYAML BatchFormat = "yaml"
)

func ParseBatchFormat(s string) (BatchFormat, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.Newf("unknown format %q (json, yaml)", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) BatchFormat {
	for _, ext := range []string{".yaml", ".yml"} {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return FormatYAML
		}
	}
	return FormatJSON
}

// LoadAdBreaks reads a JSON array or YAML sequence of ad-break records.
// Unknown fields are ignored. A field of the wrong type does not fail the
// batch: it is left nil and recorded in Invalid for Validate to report.
func LoadAdBreaks(r io.Reader, format BatchFormat) ([]AdBreakRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading ad breaks")
	}
	var records []AdBreakRequest
	switch format {
	case FormatYAML:
		records, err = decodeYAMLBatch(data)
	default:
		records, err = decodeJSONBatch(data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding ad breaks as %s", format)
	}
	return records, nil
}

func decodeJSONBatch(data []byte) ([]AdBreakRequest, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	records := make([]AdBreakRequest, len(raw))
	for i, item := range raw {
		if json.Unmarshal(item, &records[i]) == nil {
			continue
		}
		records[i] = AdBreakRequest{}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			records[i].invalid(recordField, "ad break must be an object, got %s", string(item))
			continue
		}
		for _, f := range records[i].fields() {
			v, ok := fields[f.name]
			if !ok {
				continue
			}
			if err := json.Unmarshal(v, f.target); err != nil {
				f.reset()
				records[i].invalid(f.name, "invalid '%s' field: %s", f.name, err)
			}
		}
	}
	return records, nil
}

func decodeYAMLBatch(data []byte) ([]AdBreakRequest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, nil
	}
	if root.Kind != yaml.SequenceNode {
		return nil, errors.Newf("line %d: expected a sequence of ad breaks", root.Line)
	}
	records := make([]AdBreakRequest, len(root.Content))
	for i, item := range root.Content {
		if item.Decode(&records[i]) == nil {
			continue
		}
		records[i] = AdBreakRequest{}
		if item.Kind != yaml.MappingNode {
			records[i].invalid(recordField, "line %d: ad break must be a mapping", item.Line)
			continue
		}
		byName := make(map[string]*yaml.Node, len(item.Content)/2)
		for k := 0; k+1 < len(item.Content); k += 2 {
			byName[item.Content[k].Value] = item.Content[k+1]
		}
		for _, f := range records[i].fields() {
			v, ok := byName[f.name]
			if !ok {
				continue
			}
			if err := v.Decode(f.target); err != nil {
				f.reset()
				records[i].invalid(f.name, "invalid '%s' field: %s", f.name, err)
			}
		}
	}
	return records, nil
}

// recordField is the Invalid key for a record that is not an object.
const recordField = "record"

// requestField is a pointer to one optional field of a request.
type requestField struct {
	name   string
	target any
}

// reset clears a field that a failed decode may have left allocated.
func (f requestField) reset() {
	reflect.ValueOf(f.target).Elem().SetZero()
}

func (r *AdBreakRequest) fields() []requestField {
	return []requestField{
		{"id", &r.ID},
		{"ad_id", &r.AdID},
		{"scheduled_time", &r.ScheduledTime},
		{"duration", &r.Duration},
		{"name", &r.Name},
		{"provider_id", &r.ProviderID},
		{"provider_name", &r.ProviderName},
	}
}

func (r *AdBreakRequest) invalid(field, format string, args ...any) {
	if r.Invalid == nil {
		r.Invalid = make(map[string]string)
	}
	r.Invalid[field] = fmt.Sprintf(format, args...)
}

// String returns a short description used in log lines.
func (r AdBreakRequest) String() string {
	d := "<nil>"
	if r.Duration != nil {
		d = strconv.FormatFloat(*r.Duration, 'g', -1, 64)
	}
	t := "<nil>"
	if r.ScheduledTime != nil {
		t = string(*r.ScheduledTime)
	}
	return "id=" + deref(r.ID) + " ad_id=" + deref(r.AdID) + " scheduled_time=" + t + " duration=" + d
}

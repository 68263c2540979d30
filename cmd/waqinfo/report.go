package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/beetlebugorg/delwaq/pkg/delwaq"
	"gopkg.in/yaml.v3"
)

// textReport is implemented by every report for the text output format.
type textReport interface {
	writeText(w io.Writer) error
}

type metadataReport struct {
	Path          string     `json:"path" yaml:"path"`
	Format        string     `json:"format" yaml:"format"`
	T0            time.Time  `json:"t0" yaml:"t0"`
	Substances    []string   `json:"substances" yaml:"substances"`
	Locations     []string   `json:"locations,omitempty" yaml:"locations,omitempty"`
	Segments      int        `json:"segments" yaml:"segments"`
	TimeSteps     int        `json:"timesteps" yaml:"timesteps"`
	FirstTime     *time.Time `json:"first_time,omitempty" yaml:"first_time,omitempty"`
	LastTime      *time.Time `json:"last_time,omitempty" yaml:"last_time,omitempty"`
	TrailingBytes int64      `json:"trailing_bytes,omitempty" yaml:"trailing_bytes,omitempty"`
	CF            string     `json:"cf_version,omitempty" yaml:"cf_version,omitempty"`
	UGRID         string     `json:"ugrid_version,omitempty" yaml:"ugrid_version,omitempty"`
}

type valuesReport struct {
	Path      string      `json:"path" yaml:"path"`
	Substance string      `json:"substance" yaml:"substance"`
	TimeStep  *int        `json:"timestep,omitempty" yaml:"timestep,omitempty"`
	Time      *time.Time  `json:"time,omitempty" yaml:"time,omitempty"`
	Segment   *int        `json:"segment,omitempty" yaml:"segment,omitempty"`
	Times     []time.Time `json:"times,omitempty" yaml:"times,omitempty"`
	Values    []float64   `json:"values" yaml:"values"`
}

type historyPoint struct {
	Name            string      `json:"name" yaml:"name"`
	OutputVariables []string    `json:"output_variables" yaml:"output_variables"`
	Times           []time.Time `json:"times" yaml:"times"`
	Values          [][]float64 `json:"values" yaml:"values"`
}

type historyReport struct {
	Path   string         `json:"path" yaml:"path"`
	Points []historyPoint `json:"points" yaml:"points"`
}

type outputEntry struct {
	Path       string `json:"path" yaml:"path"`
	Format     string `json:"format" yaml:"format"`
	Substances int    `json:"substances" yaml:"substances"`
	Segments   int    `json:"segments" yaml:"segments"`
	TimeSteps  int    `json:"timesteps" yaml:"timesteps"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

type outputsReport struct {
	Root    string        `json:"root" yaml:"root"`
	Outputs []outputEntry `json:"outputs" yaml:"outputs"`
}

func buildReport(cfg *CLIConfig, logger *slog.Logger) (textReport, error) {
	opts := delwaq.DefaultReadOptions()
	opts.Logger = logger

	switch cfg.mode() {
	case modeDiscover:
		return discoverReport(cfg.Path, opts)
	case modeHistory:
		return readHistoryReport(cfg.Path, opts)
	}

	reader, err := delwaq.NewReaderForPath(cfg.Path, opts)
	if err != nil {
		return nil, err
	}
	meta, err := reader.ReadMetaData(cfg.Path)
	if err != nil {
		return nil, err
	}

	switch cfg.mode() {
	case modeTimeStep:
		values, err := reader.GetTimeStepData(cfg.Path, meta, cfg.TimeStep, cfg.Substance, cfg.Segment)
		if err != nil {
			return nil, err
		}
		r := &valuesReport{
			Path:      cfg.Path,
			Substance: cfg.Substance,
			TimeStep:  &cfg.TimeStep,
			Values:    values,
		}
		t := meta.Times()[cfg.TimeStep]
		r.Time = &t
		if cfg.Segment >= 0 {
			r.Segment = &cfg.Segment
		}
		return r, nil

	case modeSeries:
		values, err := reader.GetTimeSeriesData(cfg.Path, meta, cfg.Substance, cfg.Segment)
		if err != nil {
			return nil, err
		}
		return &valuesReport{
			Path:      cfg.Path,
			Substance: cfg.Substance,
			Segment:   &cfg.Segment,
			Times:     meta.Times(),
			Values:    values,
		}, nil
	}

	r := &metadataReport{
		Path:       cfg.Path,
		Format:     reader.Format().String(),
		T0:         meta.T0(),
		Substances: meta.Substances(),
		Locations:  meta.Locations(),
		Segments:   meta.NumberOfSegments(),
		TimeSteps:  meta.NumberOfTimeSteps(),
	}
	r.CF, r.UGRID = meta.Conventions()
	if times := meta.Times(); len(times) > 0 {
		first, last := times[0], times[len(times)-1]
		r.FirstTime, r.LastTime = &first, &last
	}
	if !reader.Format().NetCDF() {
		if info, err := os.Stat(cfg.Path); err == nil {
			r.TrailingBytes = meta.TrailingBytes(info.Size())
		}
	}
	if r.TrailingBytes > 0 {
		logger.Warn("partial timestep after last block", "path", cfg.Path, "bytes", r.TrailingBytes)
	}
	return r, nil
}

func readHistoryReport(path string, opts delwaq.ReadOptions) (*historyReport, error) {
	data, err := delwaq.ReadHistory(path, opts)
	if err != nil {
		return nil, err
	}
	r := &historyReport{Path: path, Points: make([]historyPoint, 0, len(data))}
	for _, d := range data {
		p := historyPoint{
			Name:            d.ObservationVariable,
			OutputVariables: d.OutputVariables,
			Times:           d.Times(),
		}
		for _, t := range d.Times() {
			p.Values = append(p.Values, d.Values(t))
		}
		r.Points = append(r.Points, p)
	}
	return r, nil
}

func discoverReport(root string, opts delwaq.ReadOptions) (*outputsReport, error) {
	outputs, err := delwaq.DiscoverOutputs(root)
	if err != nil {
		return nil, err
	}

	loadOpts := delwaq.DefaultLoadOptions()
	loadOpts.ReadOptions = opts
	loaded, errs := delwaq.LoadMetaData(outputs, loadOpts)
	headers := make(map[string]*delwaq.MetaData, len(loaded))
	for _, l := range loaded {
		headers[l.Path] = l.MetaData
	}

	r := &outputsReport{Root: root, Outputs: make([]outputEntry, 0, len(outputs))}
	for _, o := range outputs {
		entry := outputEntry{Path: o.Path, Format: o.Format.String()}
		if meta, ok := headers[o.Path]; ok {
			entry.Substances = meta.NumberOfSubstances()
			entry.Segments = meta.NumberOfSegments()
			entry.TimeSteps = meta.NumberOfTimeSteps()
		} else {
			entry.Error = "header unreadable"
		}
		r.Outputs = append(r.Outputs, entry)
	}
	if len(errs) > 0 {
		opts.Logger.Warn("some output headers could not be read", "root", root, "failed", len(errs))
	}
	return r, nil
}

func render(w io.Writer, format string, r textReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.writeText(w)
	}
}

func (r *metadataReport) writeText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "File:       %s (%s)\n", r.Path, r.Format)
	if r.TimeSteps == 0 && len(r.Substances) == 0 {
		b.WriteString("No output data yet\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "T0:         %s\n", r.T0.Format(time.DateTime))
	fmt.Fprintf(&b, "Substances: %d (%s)\n", len(r.Substances), strings.Join(r.Substances, ", "))
	if len(r.Locations) > 0 {
		fmt.Fprintf(&b, "Locations:  %d (%s)\n", len(r.Locations), strings.Join(r.Locations, ", "))
	}
	fmt.Fprintf(&b, "Segments:   %d\n", r.Segments)
	fmt.Fprintf(&b, "Timesteps:  %d\n", r.TimeSteps)
	if r.FirstTime != nil {
		fmt.Fprintf(&b, "Period:     %s to %s\n", r.FirstTime.Format(time.DateTime), r.LastTime.Format(time.DateTime))
	}
	if r.CF != "" || r.UGRID != "" {
		fmt.Fprintf(&b, "Conventions: CF %s, UGRID %s\n", orNone(r.CF), orNone(r.UGRID))
	}
	if r.TrailingBytes > 0 {
		fmt.Fprintf(&b, "Trailing:   %d bytes after the last timestep\n", r.TrailingBytes)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *valuesReport) writeText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s in %s\n", r.Substance, r.Path)
	switch {
	case r.Times != nil:
		for i, v := range r.Values {
			fmt.Fprintf(&b, "%s  %g\n", r.Times[i].Format(time.DateTime), v)
		}
	case r.Segment != nil && len(r.Values) == 1:
		fmt.Fprintf(&b, "%s segment %d  %g\n", r.Time.Format(time.DateTime), *r.Segment, r.Values[0])
	default:
		fmt.Fprintf(&b, "%s\n", r.Time.Format(time.DateTime))
		for seg, v := range r.Values {
			fmt.Fprintf(&b, "%6d  %g\n", seg, v)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *historyReport) writeText(w io.Writer) error {
	var b strings.Builder
	for _, p := range r.Points {
		fmt.Fprintf(&b, "%s\n", p.Name)
		fmt.Fprintf(&b, "  %-19s  %s\n", "time", strings.Join(p.OutputVariables, "  "))
		for i, t := range p.Times {
			vals := make([]string, len(p.Values[i]))
			for j, v := range p.Values[i] {
				vals[j] = fmt.Sprintf("%g", v)
			}
			fmt.Fprintf(&b, "  %s  %s\n", t.Format(time.DateTime), strings.Join(vals, "  "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *outputsReport) writeText(w io.Writer) error {
	var b strings.Builder
	for _, o := range r.Outputs {
		if o.Error != "" {
			fmt.Fprintf(&b, "%-10s  %s  (%s)\n", o.Format, o.Path, o.Error)
			continue
		}
		fmt.Fprintf(&b, "%-10s  %s  %d substances, %d segments, %d timesteps\n",
			o.Format, o.Path, o.Substances, o.Segments, o.TimeSteps)
	}
	fmt.Fprintf(&b, "%d output files under %s\n", len(r.Outputs), r.Root)
	_, err := io.WriteString(w, b.String())
	return err
}

func orNone(version string) string {
	if version == "" {
		return "none"
	}
	return version
}

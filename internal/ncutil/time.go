package ncutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var referenceLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimeUnits parses a CF units string such as
// "seconds since 2001-01-01 00:00:00" into a step and a reference time.
// A trailing "Z" or numeric offset on the reference is honoured; otherwise
// the reference is UTC.
func ParseTimeUnits(units string) (time.Duration, time.Time, error) {
	unit, ref, ok := strings.Cut(strings.TrimSpace(units), " since ")
	if !ok {
		return 0, time.Time{}, fmt.Errorf("time units %q: missing \"since\"", units)
	}

	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "seconds", "second", "secs", "sec", "s":
		step = time.Second
	case "minutes", "minute", "mins", "min":
		step = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	default:
		return 0, time.Time{}, fmt.Errorf("time units %q: unsupported unit %q", units, unit)
	}

	t, err := parseReference(strings.TrimSpace(ref))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("time units %q: %w", units, err)
	}
	return step, t, nil
}

func parseReference(ref string) (time.Time, error) {
	loc := time.UTC
	body := ref

	if strings.HasSuffix(body, "Z") {
		body = strings.TrimSuffix(body, "Z")
	} else if i := strings.LastIndexAny(body, "+-"); i > len("2006-01-02") {
		offset := strings.TrimSpace(body[i:])
		if o, err := parseOffset(offset); err == nil {
			loc = o
			body = strings.TrimSpace(body[:i])
		}
	}

	for _, layout := range referenceLayouts {
		if t, err := time.ParseInLocation(layout, body, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised reference time %q", ref)
}

func parseOffset(s string) (*time.Location, error) {
	for _, layout := range []string{"-07:00", "-0700", "-07"} {
		if t, err := time.Parse(layout, s); err == nil {
			_, off := t.Zone()
			return time.FixedZone(s, off), nil
		}
	}
	return nil, fmt.Errorf("bad offset %q", s)
}

// ReadTimes decodes the variable with standard_name = time into absolute
// UTC times. It also returns the variable's outer dimension name.
func ReadTimes(ds Dataset) ([]time.Time, string, error) {
	v, ok := FindByStandardName(ds, "time")
	if !ok {
		return nil, "", ErrNoTimeVariable
	}
	dims := v.Dimensions()
	if len(dims) == 0 {
		return nil, "", fmt.Errorf("time variable %s has no dimension", v.Name())
	}

	units, ok := AttributeString(v, "units")
	if !ok {
		return nil, "", fmt.Errorf("time variable %s has no units", v.Name())
	}
	step, ref, err := ParseTimeUnits(units)
	if err != nil {
		return nil, "", err
	}

	vals, err := ReadAll(ds, v)
	if err != nil {
		return nil, "", err
	}
	times := make([]time.Time, len(vals))
	for i, x := range vals {
		times[i] = ref.Add(time.Duration(math.Round(x * float64(step))))
	}
	return times, dims[0], nil
}

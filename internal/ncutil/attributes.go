package ncutil

import (
	"strconv"
	"strings"
)

// FindByStandardName returns the first variable whose standard_name
// attribute equals name.
func FindByStandardName(ds Dataset, name string) (Variable, bool) {
	return FindByAttribute(ds, "standard_name", name)
}

// FindByAttribute returns the first variable whose attribute key has the
// string value want.
func FindByAttribute(ds Dataset, key, want string) (Variable, bool) {
	for _, name := range ds.Variables() {
		v, err := ds.Variable(name)
		if err != nil {
			continue
		}
		if s, ok := AttributeString(v, key); ok && s == want {
			return v, true
		}
	}
	return nil, false
}

type attributer interface {
	Attribute(name string) (any, bool)
}

// AttributeString returns a text attribute, trimmed of padding.
func AttributeString(a attributer, key string) (string, bool) {
	raw, ok := a.Attribute(key)
	if !ok {
		return "", false
	}
	switch x := raw.(type) {
	case string:
		return strings.TrimRight(x, " \x00"), true
	case []byte:
		return strings.TrimRight(string(x), " \x00"), true
	case []string:
		if len(x) == 0 {
			return "", false
		}
		return strings.TrimRight(x[0], " \x00"), true
	}
	return "", false
}

// AttributeFloat returns the first value of a numeric attribute. Text
// attributes holding a number are accepted too.
func AttributeFloat(a attributer, key string) (float64, bool) {
	raw, ok := a.Attribute(key)
	if !ok {
		return 0, false
	}
	if s, ok := raw.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	vals, err := Flatten(raw)
	if err != nil || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

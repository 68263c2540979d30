package ncutil

import (
	"strconv"
	"strings"
)

// Conventions holds the versions named by a "Conventions" global attribute.
// Empty means the convention is not declared.
type Conventions struct {
	CF    string
	UGRID string
}

// ParseConventions reads e.g. "CF-1.6 UGRID-1.0 Deltares-0.8".
func ParseConventions(s string) Conventions {
	var c Conventions
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '\t'
	})
	for _, f := range fields {
		name, version, ok := strings.Cut(f, "-")
		if !ok {
			continue
		}
		switch strings.ToUpper(name) {
		case "CF":
			c.CF = version
		case "UGRID":
			c.UGRID = version
		}
	}
	return c
}

// DatasetConventions parses the dataset's Conventions attribute.
func DatasetConventions(ds Dataset) Conventions {
	s, _ := AttributeString(ds, "Conventions")
	return ParseConventions(s)
}

// Supports reports whether both declared versions are at least the given
// minimums. An empty minimum is not checked.
func (c Conventions) Supports(minCF, minUGRID string) bool {
	if minCF != "" && (c.CF == "" || compareVersions(c.CF, minCF) < 0) {
		return false
	}
	if minUGRID != "" && (c.UGRID == "" || compareVersions(c.UGRID, minUGRID) < 0) {
		return false
	}
	return true
}

func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

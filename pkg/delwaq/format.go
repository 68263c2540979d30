package delwaq

import (
	"path/filepath"
	"strings"
)

// Format identifies the encoding of an output file.
type Format int

const (
	FormatUnknown Format = iota
	// FormatMap is a flat binary map file (.map).
	FormatMap
	// FormatHistory is a flat binary history file (.his).
	FormatHistory
	// FormatNetCDFMap is a UGRID NetCDF map file (_map.nc).
	FormatNetCDFMap
	// FormatNetCDFHistory is a NetCDF history file (_his.nc).
	FormatNetCDFHistory
)

// String returns a short name for the format.
func (f Format) String() string {
	switch f {
	case FormatMap:
		return "map"
	case FormatHistory:
		return "his"
	case FormatNetCDFMap:
		return "netcdf-map"
	case FormatNetCDFHistory:
		return "netcdf-his"
	default:
		return "unknown"
	}
}

// NetCDF reports whether the format is NetCDF based.
func (f Format) NetCDF() bool {
	return f == FormatNetCDFMap || f == FormatNetCDFHistory
}

// DetectFormat selects the format from the file name suffix, ignoring case.
func DetectFormat(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, "_map.nc"):
		return FormatNetCDFMap
	case strings.HasSuffix(name, "_his.nc"):
		return FormatNetCDFHistory
	case strings.HasSuffix(name, ".his"):
		return FormatHistory
	case strings.HasSuffix(name, ".map"):
		return FormatMap
	default:
		return FormatUnknown
	}
}

// storeFormat picks the Store backend: _map.nc is NetCDF, .his is a flat
// history file and every other path is read as a flat map file.
func storeFormat(path string) Format {
	switch f := DetectFormat(path); f {
	case FormatNetCDFMap, FormatHistory:
		return f
	default:
		return FormatMap
	}
}

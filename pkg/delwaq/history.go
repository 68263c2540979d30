package delwaq

import (
	"github.com/beetlebugorg/delwaq/internal/hisfile"
	"github.com/beetlebugorg/delwaq/internal/ncfile"
)

// HistoryData is the time series of one observation point. OutputVariables
// is shared by every HistoryData read from the same file.
type HistoryData = hisfile.Data

// ReadHistory reads a whole history file, flat (.his) or NetCDF (_his.nc),
// into one series per observation point. A missing or empty file yields an
// empty slice and no error.
func ReadHistory(path string, opts ReadOptions) ([]*HistoryData, error) {
	if DetectFormat(path) == FormatNetCDFHistory {
		return ncfile.New(opts.OpenDataset, opts.logger()).ReadHistory(path)
	}
	return hisfile.Read(path, opts.logger())
}

package delwaq

import (
	"log/slog"

	"github.com/beetlebugorg/delwaq/internal/ncutil"
)

// Dataset is an open NetCDF file, as consumed by the NetCDF readers.
type Dataset = ncutil.Dataset

// ReadOptions configures the readers.
type ReadOptions struct {
	// Logger receives soft failures such as a missing file. Nil uses
	// slog.Default().
	Logger *slog.Logger

	// OpenDataset opens NetCDF files. Nil uses the native NetCDF reader.
	OpenDataset func(path string) (Dataset, error)
}

// DefaultReadOptions returns default options.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Logger: slog.Default(),
	}
}

func (o ReadOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// StoreOptions configures a Store.
type StoreOptions struct {
	ReadOptions

	// ParameterName maps a variable name to the parameter name in the file.
	// Nil uses the variable name. An empty result makes the query empty.
	ParameterName func(variableName string) string

	// Cache shares metadata between stores. Nil caches per store only.
	Cache *MetaDataCache
}

// DefaultStoreOptions returns default options.
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		ReadOptions: DefaultReadOptions(),
	}
}

package delwaq

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output is a Delwaq output file found on disk.
type Output struct {
	Path   string
	Format Format
}

// DiscoverOutputs finds all Delwaq output files in a directory tree.
//
// It recursively searches for .map, .his, _map.nc and _his.nc files and
// returns them in lexical path order.
//
// Example:
//
//	outputs, err := delwaq.DiscoverOutputs("/work/run01")
//	fmt.Printf("Found %d output files\n", len(outputs))
func DiscoverOutputs(root string) ([]Output, error) {
	var outputs []Output

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if format := DetectFormat(path); format != FormatUnknown {
			outputs = append(outputs, Output{Path: path, Format: format})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	return outputs, nil
}

package delwaq

import (
	"fmt"
	"runtime"
	"sync"
)

// LoadOptions controls parallel metadata loading.
type LoadOptions struct {
	ReadOptions

	// Workers is the number of loader goroutines. Zero uses
	// runtime.NumCPU().
	Workers int

	// SkipErrors keeps loading when a file fails; failed files are left out
	// of the result and their errors collected. Otherwise the first error
	// stops loading.
	SkipErrors bool

	// Progress is called after each file with the number processed so far.
	Progress func(loaded, total int)

	// Cache, when set, is consulted before reading a header.
	Cache *MetaDataCache
}

// DefaultLoadOptions returns load options with one worker per CPU that skip
// failing files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		ReadOptions: DefaultReadOptions(),
		Workers:     runtime.NumCPU(),
		SkipErrors:  true,
	}
}

// OutputMetaData pairs a discovered output with its header.
type OutputMetaData struct {
	Output
	MetaData *MetaData
}

// LoadMetaData reads the headers of many outputs concurrently, typically the
// result of DiscoverOutputs. Results keep the input order.
//
// Example:
//
//	outputs, _ := delwaq.DiscoverOutputs("/work/run01")
//	loaded, errs := delwaq.LoadMetaData(outputs, delwaq.DefaultLoadOptions())
//	fmt.Printf("%d headers read, %d failed\n", len(loaded), len(errs))
func LoadMetaData(outputs []Output, opts LoadOptions) ([]OutputMetaData, []error) {
	if len(outputs) == 0 {
		return []OutputMetaData{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(outputs) {
		workers = len(outputs)
	}

	type loadResult struct {
		index int
		meta  *MetaData
		err   error
	}

	jobs := make(chan int, len(outputs))
	results := make(chan loadResult, len(outputs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				meta, err := loadOne(outputs[index], opts)
				results <- loadResult{index: index, meta: meta, err: err}
			}
		}()
	}

	for i := range outputs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	metas := make(map[int]*MetaData, len(outputs))
	var errs []error
	var firstErr error
	loaded := 0

	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(outputs))
		}

		if result.err != nil {
			err := fmt.Errorf("%s: %w", outputs[result.index].Path, result.err)
			opts.logger().Warn("read output header", "path", outputs[result.index].Path, "error", result.err)
			if !opts.SkipErrors {
				// drain so the workers can exit
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			errs = append(errs, err)
			continue
		}
		metas[result.index] = result.meta
	}
	if firstErr != nil {
		return nil, []error{firstErr}
	}

	loadedOutputs := make([]OutputMetaData, 0, len(metas))
	for i, out := range outputs {
		if meta, ok := metas[i]; ok {
			loadedOutputs = append(loadedOutputs, OutputMetaData{Output: out, MetaData: meta})
		}
	}
	return loadedOutputs, errs
}

func loadOne(out Output, opts LoadOptions) (*MetaData, error) {
	reader, err := NewReader(out.Format, opts.ReadOptions)
	if err != nil {
		return nil, err
	}
	if opts.Cache == nil {
		return reader.ReadMetaData(out.Path)
	}
	return opts.Cache.Get(out.Path, out.Format, func() (*MetaData, error) {
		return reader.ReadMetaData(out.Path)
	})
}

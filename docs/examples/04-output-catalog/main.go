package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/delwaq/pkg/delwaq"
)

func main() {
	// Find every output file of a run
	outputs, err := delwaq.DiscoverOutputs("/work/run01")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Found %d output files\n", len(outputs))

	// Share parsed headers between stores
	cache := delwaq.NewMetaDataCache(50)
	opts := delwaq.DefaultStoreOptions()
	opts.Cache = cache

	for _, out := range outputs {
		if out.Format == delwaq.FormatNetCDFHistory {
			continue
		}
		store := delwaq.NewStore(out.Path, opts)
		meta, err := store.MetaData()
		if err != nil {
			log.Printf("skip %s: %v", out.Path, err)
			continue
		}
		start, end, err := store.TimeRange()
		if err != nil {
			fmt.Printf("%-10s %s: no timesteps yet\n", out.Format, out.Path)
			continue
		}
		fmt.Printf("%-10s %s: %d substances, %s to %s\n",
			out.Format, out.Path, meta.NumberOfSubstances(), start, end)
	}

	stats := cache.Stats()
	fmt.Printf("Cache: %d/%d entries, %d hits, %d misses\n",
		stats.Entries, stats.MaxEntries, stats.Hits, stats.Misses)
}

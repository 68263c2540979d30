package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/beetlebugorg/delwaq/pkg/delwaq"
)

func readLatest(path, substance string) ([]float64, error) {
	reader, err := delwaq.NewReaderForPath(path, delwaq.DefaultReadOptions())
	if err != nil {
		return nil, err
	}
	meta, err := reader.ReadMetaData(path)
	if err != nil {
		// Header could not be decoded
		return nil, err
	}
	return reader.GetTimeStepData(path, meta, meta.NumberOfTimeSteps()-1, substance, delwaq.AllSegments)
}

func main() {
	for _, substance := range []string{"OXY", "SALT"} {
		values, err := readLatest("model.map", substance)

		var indexErr *delwaq.IndexError
		var formatErr *delwaq.FormatError
		switch {
		case err == nil:
			fmt.Printf("%s: %d values\n", substance, len(values))
		case errors.Is(err, delwaq.ErrNoData):
			// The simulation has not written this file yet
			fmt.Println("No output yet, try again later")
		case errors.Is(err, delwaq.ErrUnknownSubstance):
			fmt.Printf("%s is not an output of this run\n", substance)
		case errors.As(err, &indexErr):
			fmt.Printf("No timesteps written yet: %v\n", indexErr)
		case errors.As(err, &formatErr):
			log.Printf("Corrupt file: %v", formatErr)
		default:
			log.Printf("Error: %v", err)
		}
	}
}

package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/delwaq/pkg/delwaq"
)

func main() {
	// Pick a reader from the file name
	reader, err := delwaq.NewReaderForPath("model.map", delwaq.DefaultReadOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Read the header and the timestep table
	meta, err := reader.ReadMetaData("model.map")
	if err != nil {
		log.Fatal(err)
	}
	if meta.Empty() {
		fmt.Println("No output written yet")
		return
	}

	fmt.Printf("Substances: %v\n", meta.Substances())
	fmt.Printf("Segments: %d\n", meta.NumberOfSegments())
	fmt.Printf("Timesteps: %d starting %s\n", meta.NumberOfTimeSteps(), meta.T0())

	// Oxygen in every segment at the last timestep
	last := meta.NumberOfTimeSteps() - 1
	values, err := reader.GetTimeStepData("model.map", meta, last, "OXY", delwaq.AllSegments)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("OXY at %s: %v\n", meta.Times()[last], values)
}

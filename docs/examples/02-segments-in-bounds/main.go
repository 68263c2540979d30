package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/delwaq/pkg/delwaq"
)

func main() {
	// Build an R-tree over the face centres of a UGRID map file
	index, err := delwaq.LoadFaceIndex("harbour_map.nc", delwaq.DefaultReadOptions())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Faces: %d, extent %+v\n", index.Len(), index.Bounds())

	// Faces whose centre falls inside the area of interest
	area := delwaq.Bounds{
		MinX: 150000, MaxX: 152000,
		MinY: 420000, MaxY: 421500,
	}
	segments := index.SegmentsInBounds(area)
	fmt.Printf("Segments in area: %d\n", len(segments))

	// Face closest to a monitoring buoy
	if seg, ok := index.NearestSegment(151200, 420800); ok {
		fmt.Printf("Buoy is in segment %d\n", seg)
	}
}

package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/delwaq/pkg/delwaq"
)

func main() {
	store := delwaq.NewStore("model.map", delwaq.DefaultStoreOptions())

	timeVar := &delwaq.Variable{Name: "time", ValueType: delwaq.TypeTime, Independent: true}
	segmentVar := &delwaq.Variable{Name: "segment", ValueType: delwaq.TypeIndex, Independent: true}
	oxy := &delwaq.Variable{
		Name:      "OXY",
		ValueType: delwaq.TypeDouble,
		Arguments: []*delwaq.Variable{timeVar, segmentVar},
	}

	// Widen the colour scale whenever a query finds a new extreme
	store.OnValuesChanged(func(v *delwaq.Variable) {
		lo, _ := store.MinValue(v)
		hi, _ := store.MaxValue(v)
		fmt.Printf("%s range now %g .. %g\n", v.Name, lo, hi)
	})

	times, err := store.GetVariableValues(timeVar)
	if err != nil {
		log.Fatal(err)
	}
	if times.Len() == 0 {
		fmt.Println("No output written yet")
		return
	}

	// One timestep, every segment: shape [1, segments]
	grid, err := store.GetVariableValues(oxy, &delwaq.TimeFilter{Variable: timeVar, Values: times.Times[:1]})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Grid %v: %v\n", grid.Shape, grid.Float64s)

	// One segment, every timestep: shape [timesteps, 1]
	series, err := store.GetVariableValues(oxy, &delwaq.IndexFilter{Variable: segmentVar, Values: []int{0}})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Series %v: %v\n", series.Shape, series.Float64s)
}

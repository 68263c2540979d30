// Package delwaq reads output of the Delwaq water-quality engine.
//
// Delwaq writes map files (one value per substance per grid segment per
// timestep) and history files (one value per output variable per
// observation point per timestep), either as flat little-endian binaries
// (.map, .his) or as NetCDF with UGRID mesh conventions (_map.nc, _his.nc).
//
// # Basic Usage
//
//	reader, err := delwaq.NewReaderForPath("model.map", delwaq.DefaultReadOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	meta, err := reader.ReadMetaData("model.map")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d substances, %d segments, %d timesteps\n",
//	    meta.NumberOfSubstances(), meta.NumberOfSegments(), meta.NumberOfTimeSteps())
//
//	// Oxygen in every segment at the last timestep
//	values, err := reader.GetTimeStepData("model.map", meta, meta.NumberOfTimeSteps()-1, "OXY", delwaq.AllSegments)
//
// # Running Simulations
//
// Output files are read while the engine may still be writing them. A file
// that does not exist yet, or is empty, is not an error: metadata comes back
// empty and value queries return ErrNoData. Every query opens and closes its
// own handle.
//
// # Function Store
//
// Store adapts a file to variable and filter queries, caches the metadata
// and tracks the running minimum and maximum of every parameter:
//
//	store := delwaq.NewStore("model_map.nc", delwaq.DefaultStoreOptions())
//	values, err := store.GetVariableValues(oxygen, &delwaq.TimeFilter{Variable: timeVar, Values: []time.Time{t}})
//
// # History Files
//
//	series, err := delwaq.ReadHistory("model.his", delwaq.DefaultReadOptions())
//	for _, point := range series {
//	    fmt.Println(point.ObservationVariable, point.Series("OXY"))
//	}
package delwaq

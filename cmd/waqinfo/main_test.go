package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/batchatco/go-native-netcdf/netcdf"

	"github.com/beetlebugorg/delwaq/internal/testutil"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func writeMap(t *testing.T, dir string) string {
	t.Helper()
	return testutil.Write(t, dir, "model.map", testutil.MapFile{
		T0:         t0,
		Substances: []string{"OXY", "TEMP"},
		Segments:   3,
		Offsets:    []int32{0, 3600},
	}.Bytes())
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunVersion(t *testing.T) {
	out, _, err := runCLI(t, "-version")
	require.NoError(t, err)
	assert.Equal(t, "waqinfo version "+Version+"\n", out)
}

func TestRunHelp(t *testing.T) {
	out, errOut, err := runCLI(t, "-h")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Usage")
}

func TestRunInvalidFlags(t *testing.T) {
	path := writeMap(t, t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{"missing path", nil},
		{"bad output format", []string{"-format", "xml", path}},
		{"bad log level", []string{"-log-level", "loud", path}},
		{"bad log format", []string{"-log-format", "xml", path}},
		{"timestep without substance", []string{"-timestep", "0", path}},
		{"series without segment", []string{"-series", "-substance", "OXY", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid flags")
		})
	}
}

func TestRunMetadataJSON(t *testing.T) {
	path := writeMap(t, t.TempDir())

	out, _, err := runCLI(t, "-format", "json", path)
	require.NoError(t, err)

	var got metadataReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "map", got.Format)
	assert.Equal(t, []string{"OXY", "TEMP"}, got.Substances)
	assert.Equal(t, 3, got.Segments)
	assert.Equal(t, 2, got.TimeSteps)
	assert.True(t, got.T0.Equal(t0))
	require.NotNil(t, got.LastTime)
	assert.True(t, got.LastTime.Equal(t0.Add(time.Hour)))
	assert.Zero(t, got.TrailingBytes)
}

func TestRunMetadataNetCDF(t *testing.T) {
	ds := testutil.NetCDFMap{
		Reference:   t0,
		Seconds:     []float64{0, 3600},
		Faces:       3,
		DelwaqNames: []string{"OXY"},
	}.Dataset()
	path := testutil.WriteNetCDF(t, t.TempDir(), "model_map.nc", netcdf.KindCDF, ds)

	out, _, err := runCLI(t, "-format", "json", path)
	require.NoError(t, err)

	var got metadataReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "netcdf-map", got.Format)
	assert.Equal(t, []string{"OXY"}, got.Substances)
	assert.Equal(t, 3, got.Segments)
	assert.Equal(t, "1.8", got.CF)
	assert.Equal(t, "1.0", got.UGRID)
}

func TestRunMetadataTrailingBytes(t *testing.T) {
	dir := t.TempDir()
	path := testutil.Write(t, dir, "model.map", testutil.MapFile{
		T0:         t0,
		Substances: []string{"OXY"},
		Segments:   2,
		Offsets:    []int32{0},
		Trailing:   []byte{1, 2, 3, 4, 5},
	}.Bytes())

	out, _, err := runCLI(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Timesteps:  1")
	assert.Contains(t, out, "Trailing:   5 bytes")
}

func TestRunMissingFileText(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir()+"/later.map")
	require.NoError(t, err)
	assert.Contains(t, out, "No output data yet")
}

func TestRunTimeStepYAML(t *testing.T) {
	path := writeMap(t, t.TempDir())

	out, _, err := runCLI(t, "-format", "yaml", "-substance", "TEMP", "-timestep", "1", path)
	require.NoError(t, err)

	var got struct {
		Substance string    `yaml:"substance"`
		TimeStep  int       `yaml:"timestep"`
		Values    []float64 `yaml:"values"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "TEMP", got.Substance)
	assert.Equal(t, 1, got.TimeStep)
	assert.Equal(t, []float64{
		float64(testutil.SlotValue(1, 1, 0)),
		float64(testutil.SlotValue(1, 1, 1)),
		float64(testutil.SlotValue(1, 1, 2)),
	}, got.Values)
}

func TestRunSeries(t *testing.T) {
	path := writeMap(t, t.TempDir())

	out, _, err := runCLI(t, "-format", "json", "-series", "-substance", "OXY", "-segment", "2", path)
	require.NoError(t, err)

	var got valuesReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []float64{
		float64(testutil.SlotValue(0, 0, 2)),
		float64(testutil.SlotValue(1, 0, 2)),
	}, got.Values)
	assert.Len(t, got.Times, 2)
}

func TestRunQueryErrors(t *testing.T) {
	path := writeMap(t, t.TempDir())

	_, _, err := runCLI(t, "-substance", "SALT", "-timestep", "0", path)
	assert.Error(t, err)

	_, _, err = runCLI(t, "-substance", "OXY", "-timestep", "9", path)
	assert.Error(t, err)
}

func TestRunHistory(t *testing.T) {
	path := testutil.Write(t, t.TempDir(), "model.his", testutil.HisFile{
		T0:              t0,
		OutputVariables: []string{"OXY", "TEMP"},
		Locations:       []string{"harbour", "inlet"},
		Offsets:         []int32{0, 60},
	}.Bytes())

	out, _, err := runCLI(t, "-history", "-format", "json", path)
	require.NoError(t, err)

	var got historyReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Points, 2)
	assert.Equal(t, "inlet", got.Points[1].Name)
	assert.Equal(t, []string{"OXY", "TEMP"}, got.Points[1].OutputVariables)
	require.Len(t, got.Points[1].Values, 2)
	assert.Equal(t, []float64{
		float64(testutil.SlotValue(1, 0, 1)),
		float64(testutil.SlotValue(1, 1, 1)),
	}, got.Points[1].Values[1])
}

func TestRunDiscover(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir)
	testutil.Write(t, dir, "notes.txt", []byte("not an output"))

	out, _, err := runCLI(t, "-format", "json", dir)
	require.NoError(t, err)

	var got outputsReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Outputs, 1)
	assert.Equal(t, "map", got.Outputs[0].Format)
	assert.Equal(t, 2, got.Outputs[0].Substances)
	assert.Equal(t, 3, got.Outputs[0].Segments)
	assert.Equal(t, 2, got.Outputs[0].TimeSteps)
	assert.Empty(t, got.Outputs[0].Error)
}

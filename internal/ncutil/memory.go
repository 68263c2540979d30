package ncutil

import (
	"fmt"
)

// MemDataset is an in-memory Dataset.
type MemDataset struct {
	Dims  map[string]int
	Attrs map[string]any
	Vars  []*MemVariable

	closed bool
}

// MemVariable is a variable of a MemDataset. Data is row-major over Dims;
// Strings backs character arrays.
type MemVariable struct {
	VarName string
	Dims    []string
	Attrs   map[string]any
	Data    []float64
	Strings []string

	ds *MemDataset
}

// Add appends v and returns it.
func (m *MemDataset) Add(v *MemVariable) *MemVariable {
	v.ds = m
	m.Vars = append(m.Vars, v)
	return v
}

// Closed reports whether Close was called.
func (m *MemDataset) Closed() bool { return m.closed }

func (m *MemDataset) Variables() []string {
	names := make([]string, len(m.Vars))
	for i, v := range m.Vars {
		names[i] = v.VarName
	}
	return names
}

func (m *MemDataset) Variable(name string) (Variable, error) {
	for _, v := range m.Vars {
		if v.VarName == name {
			v.ds = m
			return v, nil
		}
	}
	return nil, fmt.Errorf("variable %q: %w", name, ErrNotFound)
}

func (m *MemDataset) Attribute(name string) (any, bool) {
	v, ok := m.Attrs[name]
	return v, ok
}

func (m *MemDataset) DimensionLength(name string) (int, bool) {
	n, ok := m.Dims[name]
	return n, ok
}

func (m *MemDataset) Close() { m.closed = true }

func (v *MemVariable) Name() string         { return v.VarName }
func (v *MemVariable) Dimensions() []string { return v.Dims }

func (v *MemVariable) Attribute(name string) (any, bool) {
	a, ok := v.Attrs[name]
	return a, ok
}

func (v *MemVariable) Read(origin, shape []int) ([]float64, error) {
	if v.ds == nil {
		return nil, fmt.Errorf("read %s: variable not attached to a dataset", v.VarName)
	}
	lengths, err := Lengths(v.ds, v)
	if err != nil {
		return nil, err
	}
	return Subset(v.Data, lengths, origin, shape)
}

func (v *MemVariable) ReadStrings() ([]string, error) {
	if v.Strings == nil {
		return nil, fmt.Errorf("read %s: not a character array", v.VarName)
	}
	return append([]string(nil), v.Strings...), nil
}

package lom

import (
	"fmt"
	"sort"
)

// Column labels of the rigid body motions in tabular sources.
const (
	DefaultM1Column = "OSSM1Lcl"
	DefaultM2Column = "MCM2Lcl6D"

	// Labels used when a series is written back to a table.
	WriteM1Column = "M1RigidBodyMotions"
	WriteM2Column = "M2RigidBodyMotions"
)

// Table is a row-oriented source of array-valued columns. A nil row stands
// for a null entry.
type Table interface {
	NumRows() int
	Column(name string) ([][]float64, error)
}

// MemTable is an in-memory Table.
type MemTable struct {
	rows int
	cols map[string][][]float64
}

// NewMemTable returns an empty table.
func NewMemTable() *MemTable {
	return &MemTable{cols: make(map[string][][]float64)}
}

// Add inserts or replaces a column. All columns must have the same length.
func (t *MemTable) Add(name string, rows [][]float64) error {
	_, replacing := t.cols[name]
	if len(t.cols) > 0 && !(replacing && len(t.cols) == 1) && len(rows) != t.rows {
		return fmt.Errorf("lom: column %q has %d rows, table has %d", name, len(rows), t.rows)
	}
	t.cols[name] = rows
	t.rows = len(rows)
	return nil
}

// NumRows is the number of rows.
func (t *MemTable) NumRows() int { return t.rows }

// Column returns the rows of a column.
func (t *MemTable) Column(name string) ([][]float64, error) {
	rows, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return rows, nil
}

// Names lists the column names in lexical order.
func (t *MemTable) Names() []string {
	names := make([]string, 0, len(t.cols))
	for name := range t.cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromTable reads a series from the M1 and M2 columns of a table; empty
// labels select DefaultM1Column and DefaultM2Column. Rows where either
// column is null are dropped. The sample time is the index of the row in
// the table, and the sampling frequency is derived from the first two
// surviving rows.
func FromTable(t Table, m1Label, m2Label string, opts ...MotionOption) (*MotionSeries, error) {
	if m1Label == "" {
		m1Label = DefaultM1Column
	}
	if m2Label == "" {
		m2Label = DefaultM2Column
	}
	m1, err := t.Column(m1Label)
	if err != nil {
		return nil, err
	}
	m2, err := t.Column(m2Label)
	if err != nil {
		return nil, err
	}
	if len(m1) != len(m2) {
		return nil, fmt.Errorf("lom: column %q has %d rows, column %q has %d",
			m1Label, len(m1), m2Label, len(m2))
	}

	var (
		times          []float64
		rowsM1, rowsM2 [][]float64
	)
	for k := range m1 {
		if m1[k] == nil || m2[k] == nil {
			continue
		}
		times = append(times, float64(k))
		rowsM1 = append(rowsM1, m1[k])
		rowsM2 = append(rowsM2, m2[k])
	}

	base := []MotionOption{WithTime(times)}
	if len(times) >= 2 {
		base = append(base, WithSamplingFrequency(1/(times[1]-times[0])))
	}
	return FromSlices(Zip(rowsM1, rowsM2), append(base, opts...)...)
}

// ToTable writes the series into the M1 and M2 columns of a new table; empty
// labels select WriteM1Column and WriteM2Column.
func ToTable(m *MotionSeries, m1Label, m2Label string) *MemTable {
	if m1Label == "" {
		m1Label = WriteM1Column
	}
	if m2Label == "" {
		m2Label = WriteM2Column
	}
	m1, m2 := m.Columns()
	t := NewMemTable()
	t.cols[m1Label] = m1
	t.cols[m2Label] = m2
	t.rows = m.Len()
	return t
}

// Package report renders optical metrics as text tables, PNG plots and HTML
// charts.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/units"
)

// Formatting selects the table layout.
type Formatting int

const (
	// AdHoc is an aligned plain text table.
	AdHoc Formatting = iota
	// Latex is a LaTeX tabular environment.
	Latex
)

func (f Formatting) String() string {
	if f == Latex {
		return "latex"
	}
	return "adhoc"
}

// ParseFormatting accepts "adhoc", "text" and "latex".
func ParseFormatting(s string) (Formatting, error) {
	switch strings.ToLower(s) {
	case "", "adhoc", "text":
		return AdHoc, nil
	case "latex", "tex":
		return Latex, nil
	}
	return AdHoc, fmt.Errorf("unknown formatting %q", s)
}

// Table is a titled grid of numbers with one labelled row per channel.
type Table struct {
	Title   string
	Columns []string
	Rows    []string
	Cells   [][]float64 // [row][column]
}

// StatsTable tabulates the mean and standard deviation of every channel of
// s over the trailing window.
func StatsTable(s *lom.MetricSeries, window int) (*Table, error) {
	mean, err := s.Mean(window)
	if err != nil {
		return nil, err
	}
	std, err := s.Std(window)
	if err != nil {
		return nil, err
	}
	t := &Table{
		Title:   fmt.Sprintf("%s [%s]", s.Name, s.Unit),
		Columns: []string{"mean", "std"},
		Rows:    s.ChannelLabels(),
	}
	for i := range mean {
		t.Cells = append(t.Cells, []float64{mean[i], std[i]})
	}
	return t, nil
}

// MotionsTable tabulates sample k of the rigid body motions per segment:
// translations in micrometers and rotations in milli-arcseconds.
func MotionsTable(m *lom.MotionSeries, k int) *Table {
	t := &Table{
		Title: fmt.Sprintf("rigid body motions at t=%gs [um, mas]", m.Time()[k]),
	}
	for d := lom.Tx; d <= lom.Rz; d++ {
		t.Columns = append(t.Columns, d.String())
	}
	sample := m.Sample(k)
	for _, mirror := range []lom.Mirror{lom.M1, lom.M2} {
		for seg := 1; seg <= lom.NSegments; seg++ {
			row := make([]float64, lom.NSegmentDof)
			for d := lom.Tx; d <= lom.Rz; d++ {
				v := sample[lom.DofIndex(mirror, seg, d)]
				if d < lom.Rx {
					v = units.ConvertLength(v, units.Micrometer)
				} else {
					v = units.ToMas(v)
				}
				row[d] = v
			}
			t.Rows = append(t.Rows, fmt.Sprintf("%s S%d", mirror, seg))
			t.Cells = append(t.Cells, row)
		}
	}
	return t
}

// Write renders the table.
func (t *Table) Write(w io.Writer, f Formatting) error {
	if f == Latex {
		return t.writeLatex(w)
	}
	return t.writeAdHoc(w)
}

func (t *Table) String() string {
	var b strings.Builder
	_ = t.writeAdHoc(&b)
	return b.String()
}

func (t *Table) writeAdHoc(w io.Writer) error {
	if _, err := fmt.Fprintln(w, t.Title); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(t.Columns, "\t"))
	for i, row := range t.Rows {
		fmt.Fprintf(tw, "%s\t", row)
		for _, v := range t.Cells[i] {
			fmt.Fprintf(tw, "%.3f\t", v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

var latexEscaper = strings.NewReplacer(`_`, `\_`, `%`, `\%`, `&`, `\&`, `#`, `\#`)

func (t *Table) writeLatex(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%% %s\n", t.Title)
	fmt.Fprintf(&b, "\\begin{tabular}{l%s}\n\\hline\n", strings.Repeat("r", len(t.Columns)))
	for _, c := range t.Columns {
		fmt.Fprintf(&b, " & %s", latexEscaper.Replace(c))
	}
	b.WriteString(` \\` + "\n\\hline\n")
	for i, row := range t.Rows {
		b.WriteString(latexEscaper.Replace(row))
		for _, v := range t.Cells[i] {
			fmt.Fprintf(&b, " & %.3f", v)
		}
		b.WriteString(` \\` + "\n")
	}
	b.WriteString("\\hline\n\\end{tabular}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

package lom

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Kind identifies a sensitivity variant independently of its payload.
type Kind uint8

const (
	// Wavefront maps rigid body motions to the wavefront over the P
	// illuminated pupil points, [P x 84].
	Wavefront Kind = iota + 1
	// TipTilt maps rigid body motions to the exit pupil tip and tilt, [2 x 84].
	TipTilt
	// SegmentTipTilt maps rigid body motions to the tip and tilt of every
	// segment, [14 x 84]: the 7 segment tips followed by the 7 segment tilts.
	SegmentTipTilt
	// SegmentPiston maps rigid body motions to the piston of every segment, [7 x 84].
	SegmentPiston
	// SegmentMask assigns a segment id (1 to 7) to every illuminated pupil point.
	SegmentMask
	// PupilMask flags which points of the full pupil grid are illuminated.
	PupilMask
)

var kindNames = map[Kind]string{
	Wavefront:      "wavefront",
	TipTilt:        "tip-tilt",
	SegmentTipTilt: "segment tip-tilt",
	SegmentPiston:  "segment piston",
	SegmentMask:    "segment mask",
	PupilMask:      "pupil mask",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Kinds returns every sensitivity kind in serialization order.
func Kinds() []Kind {
	return []Kind{Wavefront, TipTilt, SegmentTipTilt, SegmentPiston, SegmentMask, PupilMask}
}

// IsMatrix reports whether the kind carries a [rows x 84] matrix.
func (k Kind) IsMatrix() bool {
	switch k {
	case Wavefront, TipTilt, SegmentTipTilt, SegmentPiston:
		return true
	}
	return false
}

// fixedRows is the row count of the kinds whose shape does not depend on the
// pupil sampling.
func (k Kind) fixedRows() int {
	switch k {
	case TipTilt:
		return NTipTilt
	case SegmentTipTilt:
		return NSegmentTT
	case SegmentPiston:
		return NSegmentPiston
	}
	return 0
}

// Sensitivity is one variant of the optical sensitivity store. Matrix kinds
// hold Values in column-major order, so that Values[c*Rows()+r] is the
// sensitivity of output r to degree of freedom c. SegmentMask holds Segments
// and PupilMask holds Pupil.
type Sensitivity struct {
	Kind     Kind
	Values   []float64
	Segments []int32
	Pupil    []bool
}

// NewMatrixSensitivity validates and wraps the column-major values of a matrix kind.
func NewMatrixSensitivity(kind Kind, values []float64) (*Sensitivity, error) {
	if !kind.IsMatrix() {
		return nil, fmt.Errorf("%w: %s is not a matrix sensitivity", ErrInvalidSensitivity, kind)
	}
	if len(values) == 0 || len(values)%NDof != 0 {
		return nil, fmt.Errorf("%w: %s has %d values, not a multiple of %d",
			ErrInvalidSensitivity, kind, len(values), NDof)
	}
	if rows := kind.fixedRows(); rows > 0 && len(values) != rows*NDof {
		return nil, fmt.Errorf("%w: %s has %d rows, want %d",
			ErrInvalidSensitivity, kind, len(values)/NDof, rows)
	}
	return &Sensitivity{Kind: kind, Values: values}, nil
}

// NewSegmentMask validates the segment id of every illuminated pupil point.
func NewSegmentMask(ids []int32) (*Sensitivity, error) {
	for i, id := range ids {
		if id < 1 || id > NSegments {
			return nil, fmt.Errorf("%w: segment mask entry %d is %d, want 1 to %d",
				ErrInvalidSensitivity, i, id, NSegments)
		}
	}
	return &Sensitivity{Kind: SegmentMask, Segments: ids}, nil
}

// NewPupilMask wraps the illumination flags of the full pupil grid.
func NewPupilMask(mask []bool) (*Sensitivity, error) {
	return &Sensitivity{Kind: PupilMask, Pupil: mask}, nil
}

// IsMatrix reports whether s carries a [rows x 84] matrix.
func (s *Sensitivity) IsMatrix() bool { return s.Kind.IsMatrix() }

// Rows is the number of outputs of a matrix sensitivity.
func (s *Sensitivity) Rows() int {
	if !s.IsMatrix() {
		return 0
	}
	return len(s.Values) / NDof
}

// Len is the number of serialized entries.
func (s *Sensitivity) Len() int {
	switch s.Kind {
	case SegmentMask:
		return len(s.Segments)
	case PupilMask:
		return len(s.Pupil)
	}
	return len(s.Values)
}

// Illuminated counts the pupil points flagged by a pupil mask.
func (s *Sensitivity) Illuminated() int {
	n := 0
	for _, lit := range s.Pupil {
		if lit {
			n++
		}
	}
	return n
}

// transposed views the column-major values as the row-major [84 x rows]
// transpose of the sensitivity. No data is copied.
func (s *Sensitivity) transposed() *mat.Dense {
	return mat.NewDense(NDof, s.Rows(), s.Values)
}

// Matrix returns a copy of the sensitivity as a [rows x 84] matrix.
func (s *Sensitivity) Matrix() (*mat.Dense, error) {
	if !s.IsMatrix() {
		return nil, fmt.Errorf("%w: %s is not a matrix", ErrUnsupportedTransform, s.Kind)
	}
	var m mat.Dense
	m.CloneFrom(s.transposed().T())
	return &m, nil
}

// MirrorBlock returns the [rows x 42] columns of one mirror.
func (s *Sensitivity) MirrorBlock(m Mirror) (*mat.Dense, error) {
	if !s.IsMatrix() {
		return nil, fmt.Errorf("%w: %s is not a matrix", ErrUnsupportedTransform, s.Kind)
	}
	var block mat.Dense
	block.CloneFrom(s.transposed().Slice(m.Offset(), m.Offset()+NMirrorDof, 0, s.Rows()).T())
	return &block, nil
}

// M2RxRy returns the [14 x 14] sensitivity of the segment tip-tilt to the M2
// segment rotations. Columns are ordered segment by segment, Rx then Ry.
func (s *Sensitivity) M2RxRy() (*mat.Dense, error) {
	if s.Kind != SegmentTipTilt {
		return nil, fmt.Errorf("%w: M2 Rx/Ry block of %s", ErrUnsupportedTransform, s.Kind)
	}
	st := s.transposed()
	out := mat.NewDense(NSegmentTT, 2*NSegments, nil)
	for seg := 1; seg <= NSegments; seg++ {
		for j, d := range []Dof{Rx, Ry} {
			col := 2*(seg-1) + j
			src := DofIndex(M2, seg, d)
			for r := 0; r < NSegmentTT; r++ {
				out.Set(r, col, st.At(src, r))
			}
		}
	}
	return out, nil
}

// apply multiplies the sensitivity with the motion series. The result is
// flattened time-major: the Rows() outputs of sample 0, then of sample 1, and
// so on.
func (s *Sensitivity) apply(motions *MotionSeries) []float64 {
	n := motions.Len()
	if n == 0 {
		return []float64{}
	}
	// Dᵀ [n x 84] times Sᵀ [84 x rows] is the row-major [n x rows] product,
	// whose backing slice is (S·D) in column-major order.
	var out mat.Dense
	out.Mul(motions.transposed(), s.transposed())
	raw := out.RawMatrix()
	if raw.Stride == raw.Cols {
		return raw.Data[:raw.Rows*raw.Cols]
	}
	values := make([]float64, 0, raw.Rows*raw.Cols)
	for i := 0; i < raw.Rows; i++ {
		values = append(values, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols]...)
	}
	return values
}

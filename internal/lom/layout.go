// Package lom implements the linear optical model of the segmented telescope:
// optical sensitivity matrices applied to rigid body motion time series of the
// primary (M1) and secondary (M2) mirror segments.
package lom

// Rigid body motion layout. Every motion sample is a column of NDof values:
// the M1 block first, then the M2 block. Each block lists the segments in
// order and, per segment, the six degrees of freedom Tx, Ty, Tz, Rx, Ry, Rz.
const (
	NSegments      = 7
	NSegmentDof    = 6
	NMirrorDof     = NSegments * NSegmentDof
	NDof           = 2 * NMirrorDof
	M1Offset       = 0
	M2Offset       = NMirrorDof
	NTipTilt       = 2
	NSegmentTT     = 2 * NSegments
	NSegmentPiston = NSegments
)

// Dof names a single rigid body degree of freedom of a segment.
type Dof int

const (
	Tx Dof = iota
	Ty
	Tz
	Rx
	Ry
	Rz
)

var dofNames = [NSegmentDof]string{"Tx", "Ty", "Tz", "Rx", "Ry", "Rz"}

func (d Dof) String() string {
	if d < 0 || int(d) >= NSegmentDof {
		return "Dof(?)"
	}
	return dofNames[d]
}

// Mirror selects one of the two mirror blocks of the motion vector.
type Mirror int

const (
	M1 Mirror = iota
	M2
)

func (m Mirror) String() string {
	if m == M2 {
		return "M2"
	}
	return "M1"
}

// Offset is the row of the first M1 or M2 degree of freedom.
func (m Mirror) Offset() int {
	if m == M2 {
		return M2Offset
	}
	return M1Offset
}

// DofIndex returns the row of a degree of freedom in the motion vector.
// Segments are numbered 1 to 7.
func DofIndex(m Mirror, segment int, d Dof) int {
	return m.Offset() + (segment-1)*NSegmentDof + int(d)
}

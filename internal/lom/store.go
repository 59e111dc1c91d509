package lom

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Store holds at most one sensitivity of every kind. A Store is read-only
// once built and safe for concurrent use.
type Store struct {
	byKind map[Kind]*Sensitivity
}

// NewStore builds a store and checks the variants against each other: the
// wavefront rows, the segment mask length and the number of illuminated
// pupil points must agree.
func NewStore(sens ...*Sensitivity) (*Store, error) {
	s := &Store{byKind: make(map[Kind]*Sensitivity, len(sens))}
	for _, v := range sens {
		if v == nil {
			continue
		}
		if _, ok := kindNames[v.Kind]; !ok {
			return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidSensitivity, uint8(v.Kind))
		}
		if _, dup := s.byKind[v.Kind]; dup {
			return nil, fmt.Errorf("%w: duplicate %s", ErrInvalidSensitivity, v.Kind)
		}
		s.byKind[v.Kind] = v
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) validate() error {
	p := -1
	if wf, ok := s.byKind[Wavefront]; ok {
		p = wf.Rows()
	}
	if sm, ok := s.byKind[SegmentMask]; ok {
		if p >= 0 && len(sm.Segments) != p {
			return fmt.Errorf("%w: segment mask has %d points, wavefront has %d",
				ErrInvalidSensitivity, len(sm.Segments), p)
		}
		p = len(sm.Segments)
	}
	if pm, ok := s.byKind[PupilMask]; ok && p >= 0 {
		if lit := pm.Illuminated(); lit != p {
			return fmt.Errorf("%w: pupil mask illuminates %d points, want %d",
				ErrInvalidSensitivity, lit, p)
		}
	}
	return nil
}

// Get returns the sensitivity of the given kind. Asking for a kind the store
// does not hold is a configuration mistake: Get panics with a
// *MissingSensitivityError. Use Lookup or Require to check first.
func (s *Store) Get(kind Kind) *Sensitivity {
	v, ok := s.Lookup(kind)
	if !ok {
		panic(&MissingSensitivityError{Kind: kind})
	}
	return v
}

// Lookup returns the sensitivity of the given kind if present.
func (s *Store) Lookup(kind Kind) (*Sensitivity, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.byKind[kind]
	return v, ok
}

// Has reports whether the store holds the given kind.
func (s *Store) Has(kind Kind) bool {
	_, ok := s.Lookup(kind)
	return ok
}

// Require returns a *MissingSensitivityError for the first absent kind.
func (s *Store) Require(kinds ...Kind) error {
	for _, k := range kinds {
		if !s.Has(k) {
			return &MissingSensitivityError{Kind: k}
		}
	}
	return nil
}

// Kinds lists the kinds held by the store in serialization order.
func (s *Store) Kinds() []Kind {
	var kinds []Kind
	for _, k := range Kinds() {
		if s.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Stack concatenates matrix sensitivities into a single [sum(rows) x 84] matrix.
func (s *Store) Stack(kinds ...Kind) (*mat.Dense, error) {
	rows := 0
	for _, k := range kinds {
		v, ok := s.Lookup(k)
		if !ok {
			return nil, &MissingSensitivityError{Kind: k}
		}
		if !v.IsMatrix() {
			return nil, fmt.Errorf("%w: cannot stack %s", ErrUnsupportedTransform, k)
		}
		rows += v.Rows()
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrUnsupportedTransform)
	}
	out := mat.NewDense(rows, NDof, nil)
	r := 0
	for _, k := range kinds {
		v := s.byKind[k]
		n := v.Rows()
		dst := out.Slice(r, r+n, 0, NDof).(*mat.Dense)
		dst.Copy(v.transposed().T())
		r += n
	}
	return out, nil
}

package lom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDofIndex(t *testing.T) {
	tests := []struct {
		mirror  Mirror
		segment int
		dof     Dof
		want    int
	}{
		{M1, 1, Tx, 0},
		{M1, 1, Rz, 5},
		{M1, 7, Rz, 41},
		{M2, 1, Tx, 42},
		{M2, 3, Ry, 42 + 2*6 + 4},
		{M2, 7, Rz, 83},
	}
	for _, tt := range tests {
		t.Run(tt.mirror.String()+"/"+tt.dof.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, DofIndex(tt.mirror, tt.segment, tt.dof))
		})
	}
}

func TestNewMatrixSensitivity(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		n       int
		wantErr bool
	}{
		{"wavefront any multiple", Wavefront, 13 * NDof, false},
		{"tip-tilt", TipTilt, 2 * NDof, false},
		{"tip-tilt wrong rows", TipTilt, 3 * NDof, true},
		{"segment tip-tilt", SegmentTipTilt, 14 * NDof, false},
		{"segment piston wrong rows", SegmentPiston, 14 * NDof, true},
		{"not a multiple of 84", Wavefront, 100, true},
		{"empty", Wavefront, 0, true},
		{"mask is not a matrix", SegmentMask, NDof, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMatrixSensitivity(tt.kind, make([]float64, tt.n))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSensitivity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.n/NDof, s.Rows())
			assert.Equal(t, tt.n, s.Len())
		})
	}
}

func TestNewSegmentMaskRejectsUnknownSegments(t *testing.T) {
	for _, ids := range [][]int32{{0}, {1, 8}, {-1}} {
		_, err := NewSegmentMask(ids)
		assert.ErrorIs(t, err, ErrInvalidSensitivity, "ids %v", ids)
	}
	s, err := NewSegmentMask([]int32{1, 7})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Rows())
	assert.Equal(t, 2, s.Len())
}

func TestNewStoreConsistency(t *testing.T) {
	wf := mustMatrix(t, Wavefront, testMatrix(3, 0))
	mask3, _ := NewSegmentMask([]int32{1, 2, 3})
	mask2, _ := NewSegmentMask([]int32{1, 2})
	pupil3, _ := NewPupilMask([]bool{true, false, true, true})
	pupil2, _ := NewPupilMask([]bool{true, true})

	tests := []struct {
		name    string
		sens    []*Sensitivity
		wantErr bool
	}{
		{"consistent", []*Sensitivity{wf, mask3, pupil3}, false},
		{"partial store", []*Sensitivity{wf}, false},
		{"mask length differs", []*Sensitivity{wf, mask2}, true},
		{"pupil count differs", []*Sensitivity{wf, pupil2}, true},
		{"mask against pupil", []*Sensitivity{mask3, pupil2}, true},
		{"duplicate kind", []*Sensitivity{wf, wf}, true},
		{"unknown kind", []*Sensitivity{{Kind: Kind(42)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore(tt.sens...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSensitivity)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStoreGetPanicsOnMissingKind(t *testing.T) {
	store, err := NewStore(mustMatrix(t, TipTilt, testMatrix(NTipTilt, 0)))
	require.NoError(t, err)

	assert.Same(t, store.Get(TipTilt), store.Get(TipTilt))
	assert.True(t, store.Has(TipTilt))
	assert.False(t, store.Has(Wavefront))

	defer func() {
		r := recover()
		require.NotNil(t, r, "Get of a missing kind should panic")
		err, ok := r.(error)
		require.True(t, ok)
		var missing *MissingSensitivityError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, SegmentPiston, missing.Kind)
		assert.ErrorIs(t, err, ErrMissingSensitivity)
	}()
	store.Get(SegmentPiston)
}

func TestStoreRequireAndKinds(t *testing.T) {
	store := testStore(t)
	assert.Equal(t, Kinds(), store.Kinds())
	assert.NoError(t, store.Require(Wavefront, PupilMask))

	partial, err := NewStore(mustMatrix(t, SegmentPiston, testMatrix(NSegmentPiston, 0)))
	require.NoError(t, err)
	assert.Equal(t, []Kind{SegmentPiston}, partial.Kinds())
	err = partial.Require(SegmentPiston, TipTilt)
	assert.ErrorIs(t, err, ErrMissingSensitivity)
	assert.Contains(t, err.Error(), "tip-tilt")
}

func TestSensitivityMatrixIsColumnMajor(t *testing.T) {
	s := mustMatrix(t, TipTilt, testMatrix(NTipTilt, 0.5))
	m, err := s.Matrix()
	require.NoError(t, err)

	r, c := m.Dims()
	require.Equal(t, NTipTilt, r)
	require.Equal(t, NDof, c)
	for col := 0; col < NDof; col++ {
		for row := 0; row < NTipTilt; row++ {
			assert.Equal(t, s.Values[col*NTipTilt+row], m.At(row, col))
		}
	}

	mask, _ := NewSegmentMask([]int32{1})
	_, err = mask.Matrix()
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}

func TestMirrorBlock(t *testing.T) {
	s := mustMatrix(t, Wavefront, testMatrix(4, 0.9))
	full, err := s.Matrix()
	require.NoError(t, err)

	for _, mirror := range []Mirror{M1, M2} {
		block, err := s.MirrorBlock(mirror)
		require.NoError(t, err)
		r, c := block.Dims()
		require.Equal(t, 4, r)
		require.Equal(t, NMirrorDof, c)
		for row := 0; row < r; row++ {
			for col := 0; col < c; col++ {
				assert.Equal(t, full.At(row, mirror.Offset()+col), block.At(row, col))
			}
		}
	}
}

func TestM2RxRy(t *testing.T) {
	s := mustMatrix(t, SegmentTipTilt, testMatrix(NSegmentTT, 1.3))
	full, err := s.Matrix()
	require.NoError(t, err)

	block, err := s.M2RxRy()
	require.NoError(t, err)
	r, c := block.Dims()
	require.Equal(t, 14, r)
	require.Equal(t, 14, c)
	for seg := 1; seg <= NSegments; seg++ {
		for row := 0; row < r; row++ {
			assert.Equal(t, full.At(row, DofIndex(M2, seg, Rx)), block.At(row, 2*(seg-1)))
			assert.Equal(t, full.At(row, DofIndex(M2, seg, Ry)), block.At(row, 2*(seg-1)+1))
		}
	}

	_, err = mustMatrix(t, TipTilt, testMatrix(NTipTilt, 0)).M2RxRy()
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}

func TestStoreStack(t *testing.T) {
	store := testStore(t)
	stacked, err := store.Stack(TipTilt, SegmentPiston)
	require.NoError(t, err)

	r, c := stacked.Dims()
	require.Equal(t, NTipTilt+NSegmentPiston, r)
	require.Equal(t, NDof, c)

	tt, _ := store.Get(TipTilt).Matrix()
	sp, _ := store.Get(SegmentPiston).Matrix()
	for col := 0; col < NDof; col++ {
		assert.Equal(t, tt.At(1, col), stacked.At(1, col))
		assert.Equal(t, sp.At(0, col), stacked.At(NTipTilt, col))
		assert.Equal(t, sp.At(6, col), stacked.At(NTipTilt+6, col))
	}

	_, err = store.Stack(TipTilt, PupilMask)
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
	partial, _ := NewStore()
	_, err = partial.Stack(TipTilt)
	assert.ErrorIs(t, err, ErrMissingSensitivity)
}

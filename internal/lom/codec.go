package lom

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/banshee-data/optics.report/internal/fsutil"
	"github.com/banshee-data/optics.report/internal/monitoring"
)

// The sensitivity file is a sequence of protobuf wire records. Two varint
// header records come first, then one length-delimited record per
// sensitivity whose field number is the Kind. Matrix payloads are packed
// fixed64 floats, mask payloads are packed varints.
const (
	formatVersion = 1

	fieldDofCount protowire.Number = 14
	fieldVersion  protowire.Number = 15
)

// Encode serializes the store in kind order.
func Encode(s *Store) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, formatVersion)
	b = protowire.AppendTag(b, fieldDofCount, protowire.VarintType)
	b = protowire.AppendVarint(b, NDof)
	for _, k := range s.Kinds() {
		v := s.byKind[k]
		payload := make([]byte, 0, 8*v.Len())
		switch k {
		case SegmentMask:
			for _, id := range v.Segments {
				payload = protowire.AppendVarint(payload, uint64(id))
			}
		case PupilMask:
			for _, lit := range v.Pupil {
				payload = protowire.AppendVarint(payload, protowire.EncodeBool(lit))
			}
		default:
			for _, x := range v.Values {
				payload = protowire.AppendFixed64(payload, math.Float64bits(x))
			}
		}
		b = protowire.AppendTag(b, protowire.Number(k), protowire.BytesType)
		b = protowire.AppendBytes(b, payload)
	}
	return b
}

// Decode parses a sensitivity blob. Unknown records are skipped. Any parse
// failure is a *SensitivityLoadError matching ErrSensitivityCorrupt.
func Decode(data []byte) (*Store, error) {
	s, err := decode(data)
	if err != nil {
		return nil, corrupt("", err)
	}
	return s, nil
}

func decode(data []byte) (*Store, error) {
	var (
		sens    []*Sensitivity
		version uint64
	)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			if v != formatVersion {
				return nil, fmt.Errorf("unsupported format version %d", v)
			}
			version = v
			data = data[n:]
		case num == fieldDofCount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			if v != NDof {
				return nil, fmt.Errorf("sensitivities are for %d degrees of freedom, want %d", v, NDof)
			}
			data = data[n:]
		case num >= protowire.Number(Wavefront) && num <= protowire.Number(PupilMask) && typ == protowire.BytesType:
			payload, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			v, err := decodeSensitivity(Kind(num), payload)
			if err != nil {
				return nil, err
			}
			sens = append(sens, v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	if version == 0 {
		return nil, errors.New("missing format header")
	}
	return NewStore(sens...)
}

func decodeSensitivity(kind Kind, payload []byte) (*Sensitivity, error) {
	switch kind {
	case SegmentMask:
		var ids []int32
		for len(payload) > 0 {
			v, n := protowire.ConsumeVarint(payload)
			if n < 0 {
				return nil, fmt.Errorf("%s: %w", kind, protowire.ParseError(n))
			}
			if v < 1 || v > NSegments {
				return nil, fmt.Errorf("%s: segment id %d out of range [1,%d]", kind, v, NSegments)
			}
			ids = append(ids, int32(v))
			payload = payload[n:]
		}
		return NewSegmentMask(ids)
	case PupilMask:
		var mask []bool
		for len(payload) > 0 {
			v, n := protowire.ConsumeVarint(payload)
			if n < 0 {
				return nil, fmt.Errorf("%s: %w", kind, protowire.ParseError(n))
			}
			mask = append(mask, protowire.DecodeBool(v))
			payload = payload[n:]
		}
		return NewPupilMask(mask)
	}
	if len(payload)%8 != 0 {
		return nil, fmt.Errorf("%s: payload of %d bytes is not a float64 array", kind, len(payload))
	}
	values := make([]float64, 0, len(payload)/8)
	for len(payload) > 0 {
		v, n := protowire.ConsumeFixed64(payload)
		if n < 0 {
			return nil, fmt.Errorf("%s: %w", kind, protowire.ParseError(n))
		}
		values = append(values, math.Float64frombits(v))
		payload = payload[n:]
	}
	return NewMatrixSensitivity(kind, values)
}

// Load reads a sensitivity file.
func Load(fsys fsutil.FileSystem, path string) (*Store, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		reason := ErrSensitivityUnreadable
		if errors.Is(err, fs.ErrNotExist) {
			reason = ErrSensitivityNotFound
		}
		return nil, &SensitivityLoadError{Path: path, reason: reason, Err: err}
	}
	s, err := decode(data)
	if err != nil {
		return nil, corrupt(path, err)
	}
	return s, nil
}

// Save writes the store to path. The data goes to a temporary file first
// which is then renamed over path, so readers never observe a partial file.
func Save(fsys fsutil.FileSystem, path string, s *Store) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return &SensitivityWriteError{Path: path, Err: err}
		}
	}
	tmp := path + ".tmp"
	if err := fsys.WriteFile(tmp, Encode(s), 0o644); err != nil {
		return &SensitivityWriteError{Path: path, Err: err}
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return &SensitivityWriteError{Path: path, Err: err}
	}
	monitoring.Logf("saved %d optical sensitivities to %s", len(s.byKind), path)
	return nil
}

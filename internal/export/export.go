// Package export writes metric series to files and to InfluxDB.
package export

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/optics.report/internal/fsutil"
	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/monitoring"
)

// ErrUnknownFormat is returned for unsupported file formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is a file encoding of exported series.
type Format string

const (
	JSON Format = "json"
	// Gob is a gzip compressed gob stream.
	Gob Format = "gob"
)

// Extension returns the file suffix of f.
func (f Format) Extension() string {
	if f == Gob {
		return ".gob.gz"
	}
	return "." + string(f)
}

// ParseFormat accepts "json" and "gob".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, Gob:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatOf infers the format from a file name.
func FormatOf(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ".json"):
		return JSON, nil
	case strings.HasSuffix(path, ".gob.gz"), strings.HasSuffix(path, ".gob"):
		return Gob, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
}

// Document is the exported form of a metric series: one time stamp and one
// row of channel values per sample.
type Document struct {
	Name     string      `json:"name"`
	Unit     string      `json:"unit"`
	Channels []string    `json:"channels"`
	Time     []float64   `json:"time"`
	Samples  [][]float64 `json:"samples"`
}

// NewDocument pairs a series with its sample times.
func NewDocument(s *lom.MetricSeries, time []float64) (*Document, error) {
	if len(time) != s.Len() {
		return nil, fmt.Errorf("metric %q has %d samples but %d time stamps", s.Name, s.Len(), len(time))
	}
	return &Document{
		Name:     s.Name,
		Unit:     s.Unit,
		Channels: s.ChannelLabels(),
		Time:     time,
		Samples:  s.Items(),
	}, nil
}

// Series rebuilds the metric series.
func (d *Document) Series() (*lom.MetricSeries, error) {
	width := len(d.Channels)
	values := make([]float64, 0, width*len(d.Samples))
	for k, sample := range d.Samples {
		if len(sample) != width {
			return nil, fmt.Errorf("metric %q sample %d has %d values, want %d", d.Name, k, len(sample), width)
		}
		values = append(values, sample...)
	}
	return lom.NewMetricSeries(d.Name, d.Unit, width, values)
}

// Encode serializes docs in format f.
func Encode(f Format, docs []*Document) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case JSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(docs); err != nil {
			return nil, err
		}
	case Gob:
		zw := gzip.NewWriter(&buf)
		if err := gob.NewEncoder(zw).Encode(docs); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	return buf.Bytes(), nil
}

// Decode parses data written by Encode.
func Decode(f Format, data []byte) ([]*Document, error) {
	var docs []*Document
	switch f {
	case JSON:
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
	case Gob:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		if err := gob.NewDecoder(zr).Decode(&docs); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	return docs, nil
}

// WriteFile writes docs to path through a temporary file, in the format
// given by the file name.
func WriteFile(fsys fsutil.FileSystem, path string, docs ...*Document) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, docs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := fsys.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	monitoring.Logf("exported %d metric series to %s", len(docs), path)
	return nil
}

// ReadFile reads the documents of a file written by WriteFile.
func ReadFile(fsys fsutil.FileSystem, path string) ([]*Document, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	docs, err := Decode(f, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return docs, nil
}

package lom

import (
	"os"
	"path/filepath"

	"github.com/banshee-data/optics.report/internal/fsutil"
	"github.com/banshee-data/optics.report/internal/monitoring"
)

const (
	// EnvSensitivityDir names the environment variable holding the
	// directory of the default sensitivity file.
	EnvSensitivityDir = "LOM"
	// DefaultSensitivityFile is the file name of the default sensitivities.
	DefaultSensitivityFile = "optical_sensitivities.rs.bin"
)

// Loader locates a sensitivity file.
type Loader struct {
	FS   fsutil.FileSystem
	Dir  string
	File string
}

// DefaultLoader reads DefaultSensitivityFile from the directory named by the
// LOM environment variable, or from the working directory.
func DefaultLoader() Loader {
	dir := os.Getenv(EnvSensitivityDir)
	if dir == "" {
		dir = "."
	}
	return Loader{FS: fsutil.OSFileSystem{}, Dir: dir, File: DefaultSensitivityFile}
}

// Path is the file the loader reads.
func (l Loader) Path() string {
	file := l.File
	if file == "" {
		file = DefaultSensitivityFile
	}
	return filepath.Join(l.Dir, file)
}

// Load reads and decodes the sensitivity file.
func (l Loader) Load() (*Store, error) {
	fsys := l.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	path := l.Path()
	monitoring.Logf("loading optical sensitivities from %s", path)
	return Load(fsys, path)
}

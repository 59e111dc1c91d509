package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fsys := OSFileSystem{}

	if !fsys.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}
	if fsys.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_WriteRenameRead(t *testing.T) {
	fsys := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "nested", "dir")

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	tmp := filepath.Join(dir, "blob.tmp")
	final := filepath.Join(dir, "blob.bin")
	if err := fsys.WriteFile(tmp, []byte("payload"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fsys.Rename(tmp, final); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if fsys.Exists(tmp) {
		t.Error("temporary file still present after rename")
	}
	data, err := fsys.ReadFile(final)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("expected %q, got %q", "payload", data)
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	if err := mfs.WriteFile("/test.txt", testData, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}

	// Mutating the returned slice must not change the stored file.
	data[0] = 'H'
	again, _ := mfs.ReadFile("/test.txt")
	if string(again) != string(testData) {
		t.Errorf("stored data changed to %q", again)
	}
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if mfs.Exists("/created.txt") {
		t.Error("file visible before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, err := mfs.ReadFile("/created.txt")
	if err != nil || string(data) != "abc" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
}

func TestMemoryFileSystem_ReadErrors(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/locked.bin", []byte{1}, 0o644)
	mfs.SetUnreadable("/locked.bin")

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", "/missing.bin", fs.ErrNotExist},
		{"unreadable", "/locked.bin", fs.ErrPermission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mfs.ReadFile(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadFile(%s) error = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}

func TestMemoryFileSystem_Rename(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/a", []byte("new"), 0o644)
	_ = mfs.WriteFile("/b", []byte("old"), 0o644)

	if err := mfs.Rename("/a", "/b"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if mfs.Exists("/a") {
		t.Error("source still exists")
	}
	data, _ := mfs.ReadFile("/b")
	if string(data) != "new" {
		t.Errorf("expected replaced content, got %q", data)
	}
	if err := mfs.Rename("/a", "/c"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Rename of missing file error = %v", err)
	}
}

func TestMemoryFileSystem_MkdirAllAndStat(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/a/b/c", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		info, err := mfs.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%s) failed: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}

	_ = mfs.WriteFile("/a/file", []byte("12345"), 0o644)
	info, err := mfs.Stat("/a/./file")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 || info.IsDir() || info.Name() != "file" {
		t.Errorf("unexpected file info: %+v", info)
	}
}

func TestMemoryFileSystem_RemoveAndFiles(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/x", nil, 0o644)
	_ = mfs.WriteFile("/y", nil, 0o644)

	if err := mfs.Remove("/x"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := mfs.Remove("/x"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("second Remove error = %v", err)
	}
	files := mfs.Files()
	sort.Strings(files)
	if len(files) != 1 || files[0] != "/y" {
		t.Errorf("Files() = %v", files)
	}
}

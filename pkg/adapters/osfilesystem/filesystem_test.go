package osfilesystem

import (
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fsys := New()
	path := filepath.Join(t.TempDir(), "boxes.csv")
	want := []byte("Rect_id\tx\ty\tw\th\n0\t1\t2\t3\t4\n")

	if err := fsys.WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fsys := New()
	path := filepath.Join(t.TempDir(), "out", "videos", "run.mp4")

	if err := fsys.WriteFile(path, []byte{0, 0, 0, 8}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exists, err := fsys.Exists(path)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}
}

func TestFileSystem_IsDir(t *testing.T) {
	fsys := New()
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := fsys.WriteFile(file, []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"directory", dir, true},
		{"regular file", file, false},
		{"missing", filepath.Join(dir, "missing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fsys.IsDir(tt.path)
			if err != nil {
				t.Fatalf("IsDir failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsDir(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileSystem_MkdirAllAndRemove(t *testing.T) {
	fsys := New()
	path := filepath.Join(t.TempDir(), "debug", "frames")

	if err := fsys.MkdirAll(path); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if ok, _ := fsys.IsDir(path); !ok {
		t.Fatal("expected directory to exist")
	}

	if err := fsys.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	exists, err := fsys.Exists(path)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected directory to be removed")
	}
}

package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/yada/internal/errors"
)

func TestValidatePath_TraversalRejected(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../foods.jsonl"},
		{"deep traversal", "../../etc/foods.jsonl"},
		{"through exports", filepath.Join(dir, "..", "foods.jsonl")},
		{"hidden in path", dir + "/sub/../../../etc/shadow.jsonl"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, PathCheckWrite, dir)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_ExtensionRequired(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"foods", "foods.json", "foods.txt", "foods.jsonl.bak"} {
		t.Run(name, func(t *testing.T) {
			err := ValidatePath(filepath.Join(dir, name), PathCheckWrite, dir)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_DirectoryRestriction(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	if err := ValidatePath(filepath.Join(other, "foods.jsonl"), PathCheckWrite, dir); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("outside exports: expected ErrInvalidRequest, got: %v", err)
	}

	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0700); err != nil {
		t.Fatal(err)
	}
	if err := ValidatePath(filepath.Join(sub, "foods.jsonl"), PathCheckWrite, dir); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("subdirectory: expected ErrInvalidRequest, got: %v", err)
	}

	if err := ValidatePath(filepath.Join(dir, "foods.jsonl"), PathCheckWrite, dir); err != nil {
		t.Errorf("ValidatePath in exports failed: %v", err)
	}
}

func TestValidatePath_NoExportsDir(t *testing.T) {
	err := ValidatePath("/tmp/foods.jsonl", PathCheckWrite, "")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_ReadRequiresFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.jsonl")

	if err := ValidatePath(path, PathCheckRead, dir); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := ValidatePath(path, PathCheckRead, dir); err != nil {
		t.Errorf("ValidatePath failed: %v", err)
	}
}

func TestValidatePath_SymlinkRejected(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.jsonl")
	if err := os.WriteFile(target, nil, 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
		if err := ValidatePath(link, mode, dir); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("mode %d: expected ErrInvalidRequest, got: %v", mode, err)
		}
	}
}

func TestResolveExportPath(t *testing.T) {
	dir := "/home/u/.yada/exports"

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"foods.jsonl", filepath.Join(dir, "foods.jsonl")},
		{"/tmp/foods.jsonl", "/tmp/foods.jsonl"},
		{"sub/foods.jsonl", "sub/foods.jsonl"},
	}
	for _, tc := range tests {
		if got := ResolveExportPath(tc.in, dir); got != tc.want {
			t.Errorf("ResolveExportPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

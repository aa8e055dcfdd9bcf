package safety

import (
	"path/filepath"
	"testing"
)

func TestCleanRelativePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "backend/", want: "backend"},
		{in: "scripts/start_server.py", want: filepath.Join("scripts", "start_server.py")},
		{in: "./alembic.ini", want: "alembic.ini"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: ".", wantErr: true},
		{in: "/etc/passwd", wantErr: true},
		{in: "../escape", wantErr: true},
		{in: "a/../../escape", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanRelativePath(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CleanRelativePath(%q) = %q, expected error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CleanRelativePath(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("CleanRelativePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinUnder(t *testing.T) {
	root := t.TempDir()

	got, err := JoinUnder(root, "backend/")
	if err != nil {
		t.Fatalf("JoinUnder returned error: %v", err)
	}
	if got != filepath.Join(root, "backend") {
		t.Fatalf("JoinUnder = %q", got)
	}
	if _, err := JoinUnder(root, "../escape.txt"); err == nil {
		t.Fatal("expected traversal path to fail")
	}
}

func TestIsWithin(t *testing.T) {
	root := t.TempDir()

	for _, candidate := range []string{root, filepath.Join(root, "child", "file.txt")} {
		ok, err := IsWithin(root, candidate)
		if err != nil || !ok {
			t.Fatalf("IsWithin(%q, %q) = %v, %v; want true", root, candidate, ok, err)
		}
	}

	ok, err := IsWithin(root, filepath.Join(root, "..", "sibling"))
	if err != nil || ok {
		t.Fatalf("IsWithin for sibling = %v, %v; want false", ok, err)
	}
}

func TestCheckRemovable(t *testing.T) {
	parent := t.TempDir()
	source := filepath.Join(parent, "petland")

	if err := CheckRemovable(filepath.Join(parent, "petland-backend"), source); err != nil {
		t.Fatalf("sibling destination should be removable: %v", err)
	}
	if err := CheckRemovable(source, source); err == nil {
		t.Fatal("expected source itself to be refused")
	}
	if err := CheckRemovable(parent, source); err == nil {
		t.Fatal("expected ancestor of source to be refused")
	}
	if err := CheckRemovable("", source); err == nil {
		t.Fatal("expected empty destination to be refused")
	}
}

package split

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestRenderArtifacts(t *testing.T) {
	data := ArtifactData{Project: "petland", DisplayName: "PetLand"}

	tests := []struct {
		kind      TargetKind
		wantNames []string
		contains  map[string]string
	}{
		{
			kind:      TargetBackend,
			wantNames: []string{"README.md", ".gitignore"},
			contains: map[string]string{
				"README.md":  "cd petland-backend",
				".gitignore": "__pycache__/",
			},
		},
		{
			kind:      TargetFrontend,
			wantNames: []string{"README.md", ".env.example", ".gitignore"},
			contains: map[string]string{
				"README.md":    "# PetLand Frontend",
				".env.example": "VITE_APP_NAME=PetLand",
				".gitignore":   "node_modules",
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			artifacts, err := RenderArtifacts(tt.kind, data)
			if err != nil {
				t.Fatalf("RenderArtifacts() failed: %v", err)
			}
			if len(artifacts) != len(tt.wantNames) {
				t.Fatalf("got %d artifacts, want %d", len(artifacts), len(tt.wantNames))
			}
			for i, a := range artifacts {
				if a.Name != tt.wantNames[i] {
					t.Errorf("artifact %d name = %q, want %q", i, a.Name, tt.wantNames[i])
				}
				if !strings.Contains(string(a.Content), tt.contains[a.Name]) {
					t.Errorf("%s missing %q", a.Name, tt.contains[a.Name])
				}
				if strings.Contains(string(a.Content), "{{") {
					t.Errorf("%s has unrendered template actions", a.Name)
				}
			}
		})
	}
}

func TestRenderArtifactsDeterministic(t *testing.T) {
	data := ArtifactData{Project: "petland", DisplayName: "PetLand"}
	first, err := RenderArtifacts(TargetFrontend, data)
	if err != nil {
		t.Fatalf("RenderArtifacts() failed: %v", err)
	}
	second, err := RenderArtifacts(TargetFrontend, data)
	if err != nil {
		t.Fatalf("RenderArtifacts() failed: %v", err)
	}
	for i := range first {
		if !bytes.Equal(first[i].Content, second[i].Content) {
			t.Errorf("%s differs between renders", first[i].Name)
		}
	}
}

func TestRenderArtifactsUnknownKind(t *testing.T) {
	if _, err := RenderArtifacts(TargetKind("mobile"), ArtifactData{}); err == nil {
		t.Fatal("expected error for unknown target kind")
	}
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}
	dir := t.TempDir()

	ok := ExecRunner{}.Run(context.Background(), dir, "sh", "-c", "pwd; echo warn >&2")
	if ok.Failed() {
		t.Fatalf("unexpected failure: %+v", ok)
	}
	if !strings.Contains(ok.Stderr, "warn") {
		t.Errorf("stderr not captured: %q", ok.Stderr)
	}
	if strings.TrimSpace(ok.Stdout) == "" {
		t.Error("stdout not captured")
	}

	bad := ExecRunner{}.Run(context.Background(), dir, "sh", "-c", "echo broken >&2; exit 3")
	if !bad.Failed() || bad.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %+v", bad)
	}
	if strings.TrimSpace(bad.Stderr) != "broken" {
		t.Errorf("stderr = %q", bad.Stderr)
	}

	missing := ExecRunner{}.Run(context.Background(), dir, "petland-no-such-binary")
	if !missing.Failed() || missing.ExitCode != -1 || missing.Err == nil {
		t.Errorf("expected start failure, got %+v", missing)
	}
}

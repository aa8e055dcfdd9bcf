package split

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Artifact is a generated file written at a destination root.
type Artifact struct {
	Name    string
	Content []byte
}

// ArtifactData is the only input of the templates, so output is stable
// across runs.
type ArtifactData struct {
	Project     string
	DisplayName string
}

var artifactTemplates = map[TargetKind][]struct {
	name     string
	template string
}{
	TargetBackend: {
		{name: "README.md", template: "backend_readme.md.tmpl"},
		{name: ".gitignore", template: "backend_gitignore.tmpl"},
	},
	TargetFrontend: {
		{name: "README.md", template: "frontend_readme.md.tmpl"},
		{name: ".env.example", template: "frontend_env_example.tmpl"},
		{name: ".gitignore", template: "frontend_gitignore.tmpl"},
	},
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// RenderArtifacts renders the generated files for one target kind.
func RenderArtifacts(kind TargetKind, data ArtifactData) ([]Artifact, error) {
	entries, ok := artifactTemplates[kind]
	if !ok {
		return nil, fmt.Errorf("no artifacts for target %q", kind)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, entry.template, data); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", entry.name, err)
		}
		artifacts = append(artifacts, Artifact{Name: entry.name, Content: buf.Bytes()})
	}
	return artifacts, nil
}

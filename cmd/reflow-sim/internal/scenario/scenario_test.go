package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeScenario(t, `
name: burst
refreshDelayMs: 20
observers:
  - name: header
    activePasses: [1, 2]
  - name: footer
steps:
  - refresh: true
  - advanceMs: 100
  - transitionEnd: width
  - mutate: true
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "burst" {
		t.Errorf("name = %q, want burst", s.Name)
	}
	if s.RefreshDelayMs != 20 {
		t.Errorf("refreshDelayMs = %d, want 20", s.RefreshDelayMs)
	}
	if len(s.Observers) != 2 {
		t.Fatalf("observers = %d, want 2", len(s.Observers))
	}
	if got := s.Observers[0].ActivePasses; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("activePasses = %v, want [1 2]", got)
	}
	if len(s.Steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(s.Steps))
	}
	if s.Steps[2].TransitionEnd != "width" {
		t.Errorf("step 2 transitionEnd = %q, want width", s.Steps[2].TransitionEnd)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no observers",
			yaml:    "name: x\nsteps:\n  - refresh: true\n",
			wantErr: "no observers",
		},
		{
			name:    "unnamed observer",
			yaml:    "observers:\n  - activePasses: [1]\n",
			wantErr: "has no name",
		},
		{
			name:    "duplicate observer",
			yaml:    "observers:\n  - name: a\n  - name: a\n",
			wantErr: "duplicate observer",
		},
		{
			name:    "zero pass number",
			yaml:    "observers:\n  - name: a\n    activePasses: [0]\n",
			wantErr: "1-based",
		},
		{
			name:    "empty step",
			yaml:    "observers:\n  - name: a\nsteps:\n  - {}\n",
			wantErr: "empty step",
		},
		{
			name:    "conflicting step",
			yaml:    "observers:\n  - name: a\nsteps:\n  - refresh: true\n    mutate: true\n",
			wantErr: "multiple actions",
		},
		{
			name:    "negative delay",
			yaml:    "refreshDelayMs: -1\nobservers:\n  - name: a\n",
			wantErr: "not be negative",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeScenario(t, tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLabels(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")

	if err := os.WriteFile(file, []byte("wheel\naxle\n  brace  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	labels, err := LoadLabels(file)

	if err != nil {
		t.Fatalf("failed to load labels: %v", err)
	}

	expected := []string{"wheel", "axle", "brace"}

	if len(labels) != len(expected) {
		t.Fatalf("expected %d labels, got %d", len(expected), len(labels))
	}

	for i, want := range expected {
		if labels[i] != want {
			t.Errorf("label %d: expected %q, got %q", i, want, labels[i])
		}
	}
}

func TestLoadLabelsMissingFile(t *testing.T) {

	if _, err := LoadLabels("/nonexistent/labels.txt"); err == nil {
		t.Error("expected error for missing labels file")
	}
}

func TestClassNamesFallback(t *testing.T) {

	names := ClassNames{"wheel", "axle"}

	tests := []struct {
		id       int
		expected string
	}{
		{0, "wheel"},
		{1, "axle"},
		{2, "class_2"},
		{-1, "class_-1"},
	}

	for _, tc := range tests {
		if got := names.Name(tc.id); got != tc.expected {
			t.Errorf("id %d: expected %q, got %q", tc.id, tc.expected, got)
		}
	}
}

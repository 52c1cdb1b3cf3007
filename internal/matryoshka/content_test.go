// ABOUTME: Tests for source text construction and content hashing
// ABOUTME: Verifies deterministic field order and hash normalization
package matryoshka

import (
	"strings"
	"testing"

	"github.com/KJJisBetter/scentmatch-embeddings/internal/models"
)

func TestBuildSourceText(t *testing.T) {
	content := models.ItemContent{
		Name:        "Terre d'Hermes",
		Brand:       "Hermes",
		Description: "Woody mineral vetiver",
		Accords:     []string{"woody", "citrus"},
		Notes:       []string{"orange", "vetiver", "cedar"},
	}

	got := BuildSourceText(content)
	want := "Terre d'Hermes | Hermes | Woody mineral vetiver | woody, citrus | orange, vetiver, cedar"
	if got != want {
		t.Errorf("BuildSourceText() = %q, want %q", got, want)
	}

	// Empty fields are skipped without disturbing order
	partial := models.ItemContent{Name: "Molecule 01", Notes: []string{"iso e super"}}
	if got := BuildSourceText(partial); got != "Molecule 01 | iso e super" {
		t.Errorf("BuildSourceText(partial) = %q", got)
	}

	if got := BuildSourceText(models.ItemContent{}); got != "" {
		t.Errorf("BuildSourceText(empty) = %q, want empty", got)
	}
}

func TestContentHash(t *testing.T) {
	h := ContentHash("Woody Vetiver")

	if len(h) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h))
	}
	if strings.ToLower(h) != h {
		t.Error("hash should be lowercase hex")
	}

	// Case and surrounding whitespace are normalized away
	if ContentHash("  woody vetiver  ") != h {
		t.Error("hash should be stable under case and whitespace changes")
	}

	// Different content produces a different hash (change detection)
	if ContentHash("woody vetiver musk") == h {
		t.Error("different content should hash differently")
	}

	// Deterministic across calls
	if ContentHash("Woody Vetiver") != h {
		t.Error("hash should be deterministic")
	}
}

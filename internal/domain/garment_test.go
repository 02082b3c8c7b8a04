package domain

import "testing"

func TestParseGarmentType(t *testing.T) {
	for _, g := range GarmentTypes() {
		got, ok := ParseGarmentType(string(g))
		if !ok || got != g {
			t.Fatalf("ParseGarmentType(%q) = %q, %v", g, got, ok)
		}
	}
	if got, ok := ParseGarmentType("  T-Shirt "); !ok || got != GarmentTShirt {
		t.Fatalf("ParseGarmentType with whitespace = %q, %v", got, ok)
	}
	if _, ok := ParseGarmentType("cape"); ok {
		t.Fatal("ParseGarmentType accepted unknown garment")
	}
}

func TestParsePosition(t *testing.T) {
	if got, ok := ParsePosition("BACK"); !ok || got != PositionBack {
		t.Fatalf("ParsePosition(BACK) = %q, %v", got, ok)
	}
	if _, ok := ParsePosition("sleeve"); ok {
		t.Fatal("ParsePosition accepted unknown position")
	}
}

func TestGenerationResultFinalURL(t *testing.T) {
	r := GenerationResult{ImageURL: "https://provider.example/a.png"}
	if got := r.FinalURL(); got != "https://provider.example/a.png" {
		t.Fatalf("FinalURL() = %q", got)
	}
	r.StoredURL = "https://media.example/a.png"
	if got := r.FinalURL(); got != "https://media.example/a.png" {
		t.Fatalf("FinalURL() = %q, want stored URL", got)
	}
}

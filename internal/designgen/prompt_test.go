package designgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/printforge/server/internal/domain"
)

func testBuilder() *Builder {
	return NewBuilder(10, 800, 500)
}

func validInput() RawInput {
	return RawInput{
		Flow:        "text",
		DesignText:  "a fox leaping over a geometric sunset",
		GarmentType: "t-shirt",
		Position:    "front",
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *RawInput)
	}{
		{
			name:  "text too short",
			setup: func(r *RawInput) { r.DesignText = "tiny" },
		},
		{
			name:  "text too long",
			setup: func(r *RawInput) { r.DesignText = strings.Repeat("x", 801) },
		},
		{
			name: "pattern text over its tighter bound",
			setup: func(r *RawInput) {
				r.Flow = "pattern"
				r.DesignText = strings.Repeat("x", 501)
				r.ReferenceImageURL = "https://example.com/ref.png"
			},
		},
		{
			name:  "unknown garment",
			setup: func(r *RawInput) { r.GarmentType = "cape" },
		},
		{
			name:  "unknown position",
			setup: func(r *RawInput) { r.Position = "sleeve" },
		},
		{
			name:  "unknown flow",
			setup: func(r *RawInput) { r.Flow = "video" },
		},
		{
			name:  "pattern without reference",
			setup: func(r *RawInput) { r.Flow = "pattern" },
		},
	}

	b := testBuilder()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := validInput()
			tc.setup(&raw)
			if _, err := b.Build(raw); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Build() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestBuildNormalizes(t *testing.T) {
	b := testBuilder()
	raw := validInput()
	raw.Flow = ""
	raw.DesignText = "  a fox leaping over a geometric sunset  "
	raw.GarmentType = " T-Shirt "
	raw.Position = "FRONT"

	req, err := b.Build(raw)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if req.Flow != domain.FlowText {
		t.Fatalf("Flow = %q, want %q", req.Flow, domain.FlowText)
	}
	if req.GarmentType != domain.GarmentTShirt {
		t.Fatalf("GarmentType = %q, want %q", req.GarmentType, domain.GarmentTShirt)
	}
	if req.Position != domain.PositionFront {
		t.Fatalf("Position = %q, want %q", req.Position, domain.PositionFront)
	}
	if strings.HasPrefix(req.DesignText, " ") || strings.HasSuffix(req.DesignText, " ") {
		t.Fatalf("DesignText not trimmed: %q", req.DesignText)
	}
}

func TestPatternBoundRelaxesToMaxWhenUnset(t *testing.T) {
	b := NewBuilder(10, 800, 0)
	raw := validInput()
	raw.Flow = "pattern"
	raw.DesignText = strings.Repeat("x", 700)
	raw.ReferenceImageURL = "https://example.com/ref.png"
	if _, err := b.Build(raw); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
}

func TestPromptAlwaysCarriesNegativeConstraints(t *testing.T) {
	b := testBuilder()
	inputs := []RawInput{
		validInput(),
		func() RawInput {
			r := validInput()
			r.Flow = "pattern"
			r.ReferenceImageURL = "https://example.com/ref.png"
			r.Style = "vintage"
			r.ColorScheme = "earth tones"
			return r
		}(),
	}
	for _, raw := range inputs {
		req, err := b.Build(raw)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		prompt := b.Prompt(req)
		if !strings.HasSuffix(prompt, NegativeConstraints) {
			t.Fatalf("prompt does not end with negative constraints:\n%s", prompt)
		}
	}
}

func TestPromptIncludesArtDirection(t *testing.T) {
	b := testBuilder()
	raw := validInput()
	raw.Style = "vintage"
	raw.ColorScheme = "earth tones"
	req, err := b.Build(raw)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	prompt := b.Prompt(req)
	if !strings.Contains(prompt, `visual style "vintage"`) {
		t.Fatalf("prompt missing style:\n%s", prompt)
	}
	if !strings.Contains(prompt, `color scheme "earth tones"`) {
		t.Fatalf("prompt missing color scheme:\n%s", prompt)
	}
}

func TestPromptLocaleTypographyHint(t *testing.T) {
	b := testBuilder()

	raw := validInput()
	raw.Locale = "ja"
	req, err := b.Build(raw)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if prompt := b.Prompt(req); !strings.Contains(prompt, "JA language") {
		t.Fatalf("prompt missing locale hint:\n%s", prompt)
	}

	raw.Locale = "en"
	req, err = b.Build(raw)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if prompt := b.Prompt(req); strings.Contains(prompt, "language for any typography") {
		t.Fatalf("english locale should not add a typography hint:\n%s", prompt)
	}
}

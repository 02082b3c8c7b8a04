package designgen

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/printforge/server/internal/domain"
)

// NegativeConstraints is the fixed prompt-engineering policy appended to
// every outgoing prompt. The generation service must return the artwork
// alone, ready for compositing onto a garment mockup.
const NegativeConstraints = "Render only the artwork itself: no garments, no mockups, no human models, no drop shadows, transparent background only."

// RawInput is the unvalidated payload received from the storefront.
type RawInput struct {
	Flow               string
	DesignText         string
	GarmentType        string
	Position           string
	Style              string
	ColorScheme        string
	ReferenceImageURL  string
	ReferenceImageData []byte
	ReferenceImageName string
	Locale             string
}

// Builder validates raw input and renders the outgoing prompt text.
type Builder struct {
	minTextLen     int
	maxTextLen     int
	patternTextMax int
}

// NewBuilder constructs a Builder with the configured design text bounds.
func NewBuilder(minTextLen, maxTextLen, patternTextMax int) *Builder {
	if patternTextMax <= 0 || patternTextMax > maxTextLen {
		patternTextMax = maxTextLen
	}
	return &Builder{minTextLen: minTextLen, maxTextLen: maxTextLen, patternTextMax: patternTextMax}
}

// Build validates the raw input and produces a normalized request. All
// bounds are enforced here, before any network call is issued.
func (b *Builder) Build(raw RawInput) (domain.GenerationRequest, error) {
	var req domain.GenerationRequest

	flow := domain.Flow(strings.ToLower(strings.TrimSpace(raw.Flow)))
	switch flow {
	case "", domain.FlowText:
		flow = domain.FlowText
	case domain.FlowPattern:
	default:
		return req, fmt.Errorf("%w: unsupported flow %q", domain.ErrValidation, raw.Flow)
	}

	text := strings.TrimSpace(raw.DesignText)
	if len(text) < b.minTextLen {
		return req, fmt.Errorf("%w: design text must be at least %d characters", domain.ErrValidation, b.minTextLen)
	}
	maxLen := b.maxTextLen
	if flow == domain.FlowPattern {
		maxLen = b.patternTextMax
	}
	if len(text) > maxLen {
		return req, fmt.Errorf("%w: design text must be at most %d characters", domain.ErrValidation, maxLen)
	}

	garment, ok := domain.ParseGarmentType(raw.GarmentType)
	if !ok {
		return req, fmt.Errorf("%w: unsupported garment type %q", domain.ErrValidation, raw.GarmentType)
	}
	position, ok := domain.ParsePosition(raw.Position)
	if !ok {
		return req, fmt.Errorf("%w: unsupported position %q", domain.ErrValidation, raw.Position)
	}

	refURL := strings.TrimSpace(raw.ReferenceImageURL)
	if flow == domain.FlowPattern && refURL == "" && len(raw.ReferenceImageData) == 0 {
		return req, fmt.Errorf("%w: a reference image is required for the pattern flow", domain.ErrValidation)
	}

	req = domain.GenerationRequest{
		Flow:              flow,
		DesignText:        text,
		GarmentType:       garment,
		Position:          position,
		Style:             strings.TrimSpace(raw.Style),
		ColorScheme:       strings.TrimSpace(raw.ColorScheme),
		ReferenceImageURL: refURL,
		Locale:            strings.TrimSpace(raw.Locale),
	}
	return req, nil
}

// Prompt renders the outgoing prompt text for a validated request. It is
// a pure function of the request; the negative constraints are embedded
// here rather than at call sites.
func (b *Builder) Prompt(req domain.GenerationRequest) string {
	c := cases.Title(language.Und)
	var lines []string

	lines = append(lines, fmt.Sprintf(
		"Create print-ready artwork for the %s of a %s.",
		req.Position, req.GarmentType))
	lines = append(lines, "Design request: "+req.DesignText)

	var direction []string
	if req.Style != "" {
		direction = append(direction, fmt.Sprintf("visual style %q", req.Style))
	}
	if req.ColorScheme != "" {
		direction = append(direction, fmt.Sprintf("color scheme %q", req.ColorScheme))
	}
	if len(direction) > 0 {
		lines = append(lines, c.String("art direction")+": "+strings.Join(direction, ", ")+".")
	}

	if req.Flow == domain.FlowPattern {
		lines = append(lines, "Extract the pattern, texture, and palette from the attached reference image and rework them into the requested design.")
	}

	if locale := strings.TrimSpace(req.Locale); locale != "" && !strings.HasPrefix(strings.ToLower(locale), "en") {
		lines = append(lines, fmt.Sprintf("Use %s language for any typography inside the artwork.", strings.ToUpper(locale)))
	}

	lines = append(lines, NegativeConstraints)
	return strings.Join(lines, "\n")
}

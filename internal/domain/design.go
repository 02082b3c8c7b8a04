package domain

import (
	"time"

	"github.com/google/uuid"
)

// Flow distinguishes pure-text generation from reference-guided generation.
type Flow string

const (
	// FlowText generates artwork from the design text alone.
	FlowText Flow = "text"
	// FlowPattern extracts style and texture from an uploaded
	// reference image; the reference is mandatory for this flow.
	FlowPattern Flow = "pattern"
)

// GenerationRequest is a validated request for one artwork generation.
type GenerationRequest struct {
	Flow              Flow
	DesignText        string
	GarmentType       GarmentType
	Position          Position
	Style             string
	ColorScheme       string
	ReferenceImageURL string
	Locale            string
}

// GenerationResult is the transient outcome of a single generation. It
// becomes durable only once a GenerationRecord is written.
type GenerationResult struct {
	// ImageURL is the URL returned by the generation service, either a
	// data URI or a remote URL.
	ImageURL string
	// StoredURL is set once the artwork has been re-hosted in owned
	// storage. Downstream consumers prefer it over ImageURL whenever
	// it is present.
	StoredURL string
}

// FinalURL returns the owned copy when available, the provider URL otherwise.
func (r GenerationResult) FinalURL() string {
	if r.StoredURL != "" {
		return r.StoredURL
	}
	return r.ImageURL
}

// GenerationRecord is an append-only ledger entry for one successful
// generation with an authenticated owner. Records are never mutated or
// deleted by this service.
type GenerationRecord struct {
	ID          uuid.UUID
	UserID      string
	PromptText  string
	Style       string
	ColorScheme string
	GarmentType GarmentType
	Position    Position
	ImageURL    string
	CreatedAt   time.Time
}

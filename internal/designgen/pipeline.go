package designgen

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/printforge/server/internal/db"
	"github.com/printforge/server/internal/domain"
	"github.com/printforge/server/internal/infra"
	"github.com/printforge/server/internal/storage"
)

// State identifies the orchestrator's position in the generation flow.
type State string

const (
	StateValidating         State = "validating"
	StateUploadingReference State = "uploading_reference"
	StateGenerating         State = "generating"
	StatePersistingResult   State = "persisting_result"
	StateRecordingLedger    State = "recording_ledger"
	StateDone               State = "done"
	StateErrored            State = "errored"
)

// Generator produces artwork from a prompt and optional reference images.
type Generator interface {
	Generate(ctx context.Context, prompt string, referenceImages []string) (domain.GenerationResult, error)
}

// ObjectStore writes binary content into pre-provisioned buckets.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PublicURL(bucket, key string) string
}

// Fetcher downloads a remotely hosted image so it can be re-hosted in
// owned storage.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// Ledger appends generation records for authenticated owners.
type Ledger interface {
	CreateGenerationRecord(ctx context.Context, arg db.CreateGenerationRecordParams) (uuid.UUID, error)
}

// Outcome reports where the pipeline finished. Warnings are caveats on
// an otherwise successful run, kept separate from errors so callers can
// tell "succeeded with a fallback" from "succeeded cleanly".
type Outcome struct {
	State    State
	Result   domain.GenerationResult
	Prompt   string
	RecordID uuid.UUID
	Warnings []string
}

// Pipeline sequences one generation request: validate, upload the
// reference if any, call the generation service, re-host the result,
// and append a ledger entry. Each run is a single logical flow; there
// is no shared mutable state between concurrent runs.
type Pipeline struct {
	builder *Builder
	gen     Generator
	store   ObjectStore
	fetcher Fetcher
	ledger  Ledger
	logger  infra.Logger
	designs string
	refs    string
}

// NewPipeline wires the orchestrator. The ledger may be nil in tools
// that never persist.
func NewPipeline(builder *Builder, gen Generator, store ObjectStore, fetcher Fetcher, ledger Ledger, logger infra.Logger, designsBucket, referencesBucket string) *Pipeline {
	return &Pipeline{
		builder: builder,
		gen:     gen,
		store:   store,
		fetcher: fetcher,
		ledger:  ledger,
		logger:  logger,
		designs: designsBucket,
		refs:    referencesBucket,
	}
}

// Run executes the full flow for one request. Validation and generation
// failures are fatal; persistence and ledger failures degrade to
// warnings so the user still receives their artwork.
func (p *Pipeline) Run(ctx context.Context, raw RawInput, userID string) (Outcome, error) {
	out := Outcome{State: StateValidating}

	req, err := p.builder.Build(raw)
	if err != nil {
		out.State = StateErrored
		return out, err
	}

	if len(raw.ReferenceImageData) > 0 {
		out.State = StateUploadingReference
		url, err := p.uploadReference(ctx, raw)
		if err != nil {
			// A supplied reference the service cannot use is never
			// dropped quietly, regardless of flow.
			out.State = StateErrored
			return out, fmt.Errorf("%w: upload reference image: %v", domain.ErrStorage, err)
		}
		req.ReferenceImageURL = url
	}

	out.State = StateGenerating
	out.Prompt = p.builder.Prompt(req)
	var refs []string
	if req.ReferenceImageURL != "" {
		refs = append(refs, req.ReferenceImageURL)
	}
	result, err := p.gen.Generate(ctx, out.Prompt, refs)
	if err != nil {
		out.State = StateErrored
		return out, err
	}
	out.Result = result

	out.State = StatePersistingResult
	if stored, err := p.persistResult(ctx, result.ImageURL); err != nil {
		// Availability over durability: keep serving the provider URL
		// and surface the condition as a partial success.
		p.logger.Warn().Err(err).Msg("artwork re-host failed, falling back to provider URL")
		out.Warnings = append(out.Warnings, "artwork could not be copied to owned storage; serving the provider URL")
	} else {
		out.Result.StoredURL = stored
	}

	out.State = StateRecordingLedger
	if userID == "" {
		// Anonymous generations are permitted but never tracked.
	} else if p.ledger == nil {
		out.Warnings = append(out.Warnings, "generation ledger is not configured; history entry skipped")
	} else {
		id, err := p.ledger.CreateGenerationRecord(ctx, db.CreateGenerationRecordParams{
			UserID:      userID,
			PromptText:  req.DesignText,
			Style:       req.Style,
			ColorScheme: req.ColorScheme,
			GarmentType: req.GarmentType,
			Position:    req.Position,
			ImageURL:    out.Result.FinalURL(),
		})
		if err != nil {
			p.logger.Warn().Err(err).Msg("ledger write failed")
			out.Warnings = append(out.Warnings, "generation succeeded but could not be saved to your history")
		} else {
			out.RecordID = id
		}
	}

	out.State = StateDone
	return out, nil
}

func (p *Pipeline) uploadReference(ctx context.Context, raw RawInput) (string, error) {
	contentType := http.DetectContentType(raw.ReferenceImageData)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("reference is %s, expected an image", contentType)
	}
	key := "references/" + uuid.NewString() + extensionFor(contentType)
	if err := p.store.Upload(ctx, p.refs, key, raw.ReferenceImageData, contentType); err != nil {
		return "", err
	}
	return p.store.PublicURL(p.refs, key), nil
}

func (p *Pipeline) persistResult(ctx context.Context, imageURL string) (string, error) {
	data, contentType, err := p.resolveArtwork(ctx, imageURL)
	if err != nil {
		return "", err
	}
	key := "designs/" + uuid.NewString() + extensionFor(contentType)
	if err := p.store.Upload(ctx, p.designs, key, data, contentType); err != nil {
		return "", err
	}
	return p.store.PublicURL(p.designs, key), nil
}

func (p *Pipeline) resolveArtwork(ctx context.Context, imageURL string) ([]byte, string, error) {
	if strings.HasPrefix(imageURL, "data:") {
		return storage.DecodeDataURI(imageURL)
	}
	return p.fetcher.Fetch(ctx, imageURL)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

package designgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/printforge/server/internal/db"
	"github.com/printforge/server/internal/domain"
)

type stubGenerator struct {
	calls  int
	refs   []string
	result domain.GenerationResult
	err    error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, referenceImages []string) (domain.GenerationResult, error) {
	g.calls++
	g.refs = referenceImages
	if g.err != nil {
		return domain.GenerationResult{}, g.err
	}
	return g.result, nil
}

type stubObjectStore struct {
	uploads   map[string][]byte
	uploadErr error
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{uploads: make(map[string][]byte)}
}

func (s *stubObjectStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads[bucket+"/"+key] = data
	return nil
}

func (s *stubObjectStore) PublicURL(bucket, key string) string {
	return "https://media.example/" + bucket + "/" + key
}

type stubFetcher struct {
	data []byte
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, "image/png", nil
}

type stubLedger struct {
	records []db.CreateGenerationRecordParams
	err     error
}

func (l *stubLedger) CreateGenerationRecord(ctx context.Context, arg db.CreateGenerationRecordParams) (uuid.UUID, error) {
	if l.err != nil {
		return uuid.Nil, l.err
	}
	l.records = append(l.records, arg)
	return uuid.New(), nil
}

func newTestPipeline(gen *stubGenerator, store *stubObjectStore, fetcher *stubFetcher, ledger Ledger) *Pipeline {
	return NewPipeline(NewBuilder(10, 800, 500), gen, store, fetcher, ledger, zerolog.Nop(), "designs-bucket", "refs-bucket")
}

func pipelineInput() RawInput {
	return RawInput{
		Flow:        "text",
		DesignText:  "a fox leaping over a geometric sunset",
		GarmentType: "hoodie",
		Position:    "back",
	}
}

func TestPipelineRunHappyPath(t *testing.T) {
	gen := &stubGenerator{result: domain.GenerationResult{ImageURL: "https://provider.example/out.png"}}
	store := newStubObjectStore()
	fetcher := &stubFetcher{data: []byte("png-bytes")}
	ledger := &stubLedger{}
	p := newTestPipeline(gen, store, fetcher, ledger)

	out, err := p.Run(context.Background(), pipelineInput(), "user-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateDone {
		t.Fatalf("State = %q, want %q", out.State, StateDone)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none", out.Warnings)
	}
	if !strings.HasPrefix(out.Result.StoredURL, "https://media.example/designs-bucket/designs/") {
		t.Fatalf("StoredURL = %q", out.Result.StoredURL)
	}
	if out.Result.FinalURL() != out.Result.StoredURL {
		t.Fatalf("FinalURL() = %q, want stored URL", out.Result.FinalURL())
	}
	if out.RecordID == uuid.Nil {
		t.Fatal("RecordID not set")
	}
	if len(ledger.records) != 1 {
		t.Fatalf("ledger records = %d, want 1", len(ledger.records))
	}
	if ledger.records[0].ImageURL != out.Result.StoredURL {
		t.Fatalf("ledger ImageURL = %q, want stored URL", ledger.records[0].ImageURL)
	}
	if !strings.HasSuffix(out.Prompt, NegativeConstraints) {
		t.Fatalf("prompt missing negative constraints:\n%s", out.Prompt)
	}
}

func TestPipelineValidationFailureSkipsGenerator(t *testing.T) {
	gen := &stubGenerator{}
	p := newTestPipeline(gen, newStubObjectStore(), &stubFetcher{}, &stubLedger{})

	raw := pipelineInput()
	raw.DesignText = "short"
	_, err := p.Run(context.Background(), raw, "user-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times, want 0", gen.calls)
	}
}

func TestPipelineGenerationFailureIsFatal(t *testing.T) {
	gen := &stubGenerator{err: domain.ErrGeneration}
	ledger := &stubLedger{}
	p := newTestPipeline(gen, newStubObjectStore(), &stubFetcher{}, ledger)

	out, err := p.Run(context.Background(), pipelineInput(), "user-1")
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("error = %v, want ErrGeneration", err)
	}
	if out.State != StateErrored {
		t.Fatalf("State = %q, want %q", out.State, StateErrored)
	}
	if len(ledger.records) != 0 {
		t.Fatal("failed generation must not be recorded")
	}
}

func TestPipelinePersistFailureFallsBackToProviderURL(t *testing.T) {
	gen := &stubGenerator{result: domain.GenerationResult{ImageURL: "https://provider.example/out.png"}}
	store := newStubObjectStore()
	ledger := &stubLedger{}
	p := newTestPipeline(gen, store, &stubFetcher{err: errors.New("cdn unreachable")}, ledger)

	out, err := p.Run(context.Background(), pipelineInput(), "user-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateDone {
		t.Fatalf("State = %q, want %q", out.State, StateDone)
	}
	if len(out.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", out.Warnings)
	}
	if out.Result.StoredURL != "" {
		t.Fatalf("StoredURL = %q, want empty", out.Result.StoredURL)
	}
	if out.Result.FinalURL() != "https://provider.example/out.png" {
		t.Fatalf("FinalURL() = %q, want provider URL", out.Result.FinalURL())
	}
	// The ledger still records the run, pointing at the provider URL.
	if len(ledger.records) != 1 || ledger.records[0].ImageURL != "https://provider.example/out.png" {
		t.Fatalf("ledger records = %+v", ledger.records)
	}
}

func TestPipelineAnonymousSkipsLedgerSilently(t *testing.T) {
	gen := &stubGenerator{result: domain.GenerationResult{ImageURL: "https://provider.example/out.png"}}
	ledger := &stubLedger{}
	p := newTestPipeline(gen, newStubObjectStore(), &stubFetcher{data: []byte("png")}, ledger)

	out, err := p.Run(context.Background(), pipelineInput(), "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none for anonymous", out.Warnings)
	}
	if len(ledger.records) != 0 {
		t.Fatal("anonymous generation must not be recorded")
	}
	if out.RecordID != uuid.Nil {
		t.Fatalf("RecordID = %v, want nil", out.RecordID)
	}
}

func TestPipelineLedgerFailureDowngradesToWarning(t *testing.T) {
	gen := &stubGenerator{result: domain.GenerationResult{ImageURL: "https://provider.example/out.png"}}
	ledger := &stubLedger{err: errors.New("db down")}
	p := newTestPipeline(gen, newStubObjectStore(), &stubFetcher{data: []byte("png")}, ledger)

	out, err := p.Run(context.Background(), pipelineInput(), "user-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateDone {
		t.Fatalf("State = %q, want %q", out.State, StateDone)
	}
	if len(out.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", out.Warnings)
	}
}

func TestPipelineNilLedgerWarnsForSignedInUser(t *testing.T) {
	gen := &stubGenerator{result: domain.GenerationResult{ImageURL: "https://provider.example/out.png"}}
	p := newTestPipeline(gen, newStubObjectStore(), &stubFetcher{data: []byte("png")}, nil)

	out, err := p.Run(context.Background(), pipelineInput(), "user-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", out.Warnings)
	}
}

func TestPipelinePatternUploadsReference(t *testing.T) {
	gen := &stubGenerator{result: domain.GenerationResult{ImageURL: "https://provider.example/out.png"}}
	store := newStubObjectStore()
	p := newTestPipeline(gen, store, &stubFetcher{data: []byte("png")}, &stubLedger{})

	raw := pipelineInput()
	raw.Flow = "pattern"
	raw.ReferenceImageData = pngBytes()
	raw.ReferenceImageName = "swatch.png"

	out, err := p.Run(context.Background(), raw, "user-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateDone {
		t.Fatalf("State = %q, want %q", out.State, StateDone)
	}
	if len(gen.refs) != 1 || !strings.HasPrefix(gen.refs[0], "https://media.example/refs-bucket/references/") {
		t.Fatalf("generator refs = %v", gen.refs)
	}
}

func TestPipelineTextFlowForwardsInlineReference(t *testing.T) {
	gen := &stubGenerator{result: domain.GenerationResult{ImageURL: "https://provider.example/out.png"}}
	store := newStubObjectStore()
	p := newTestPipeline(gen, store, &stubFetcher{data: []byte("png")}, &stubLedger{})

	raw := pipelineInput()
	raw.ReferenceImageData = pngBytes()
	raw.ReferenceImageName = "inspo.png"

	out, err := p.Run(context.Background(), raw, "user-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.State != StateDone {
		t.Fatalf("State = %q, want %q", out.State, StateDone)
	}
	if len(gen.refs) != 1 || !strings.HasPrefix(gen.refs[0], "https://media.example/refs-bucket/references/") {
		t.Fatalf("inline reference was not forwarded: refs = %v", gen.refs)
	}
}

func TestPipelinePatternReferenceUploadFailureIsFatal(t *testing.T) {
	gen := &stubGenerator{}
	store := newStubObjectStore()
	store.uploadErr = errors.New("bucket gone")
	p := newTestPipeline(gen, store, &stubFetcher{}, &stubLedger{})

	raw := pipelineInput()
	raw.Flow = "pattern"
	raw.ReferenceImageData = pngBytes()

	_, err := p.Run(context.Background(), raw, "user-1")
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("error = %v, want ErrStorage", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times, want 0", gen.calls)
	}
}

// pngBytes returns a minimal buffer that sniffs as image/png.
func pngBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
}

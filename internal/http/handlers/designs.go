package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/printforge/server/internal/db"
	"github.com/printforge/server/internal/designgen"
	"github.com/printforge/server/internal/domain"
	"github.com/printforge/server/internal/middleware"
	"github.com/printforge/server/pkg/zip"
)

type generateRequest struct {
	Flow              string `json:"flow"`
	DesignText        string `json:"design_text"`
	GarmentType       string `json:"garment_type"`
	Position          string `json:"position"`
	Style             string `json:"style"`
	ColorScheme       string `json:"color_scheme"`
	ReferenceImageURL string `json:"reference_image_url"`
}

type generateResponse struct {
	State     string   `json:"state"`
	ImageURL  string   `json:"image_url"`
	StoredURL string   `json:"stored_url,omitempty"`
	RecordID  string   `json:"record_id,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// DesignsGenerate runs the full generation flow for one request. The
// payload is JSON, or multipart/form-data when the pattern flow carries
// a reference image inline.
func (a *App) DesignsGenerate(w http.ResponseWriter, r *http.Request) {
	raw, err := a.decodeGenerateInput(r)
	if err != nil {
		a.domainError(w, err)
		return
	}
	raw.Locale = middleware.LocaleFromContext(r.Context())

	out, err := a.Pipeline.Run(r.Context(), raw, a.currentUserID(r))
	if err != nil {
		a.domainError(w, err)
		return
	}

	resp := generateResponse{
		State:     string(out.State),
		ImageURL:  out.Result.FinalURL(),
		StoredURL: out.Result.StoredURL,
		Warnings:  out.Warnings,
	}
	if out.RecordID != uuid.Nil {
		resp.RecordID = out.RecordID.String()
	}
	a.json(w, http.StatusCreated, resp)
}

func (a *App) decodeGenerateInput(r *http.Request) (designgen.RawInput, error) {
	var raw designgen.RawInput
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(a.Cfg.UploadMaxBytes); err != nil {
			return raw, fmt.Errorf("%w: parse multipart form: %v", domain.ErrValidation, err)
		}
		raw.Flow = r.FormValue("flow")
		raw.DesignText = r.FormValue("design_text")
		raw.GarmentType = r.FormValue("garment_type")
		raw.Position = r.FormValue("position")
		raw.Style = r.FormValue("style")
		raw.ColorScheme = r.FormValue("color_scheme")
		raw.ReferenceImageURL = r.FormValue("reference_image_url")
		file, header, err := r.FormFile("reference_image")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, a.Cfg.UploadMaxBytes+1))
			if err != nil {
				return raw, fmt.Errorf("%w: read reference image: %v", domain.ErrValidation, err)
			}
			if int64(len(data)) > a.Cfg.UploadMaxBytes {
				return raw, fmt.Errorf("%w: reference image exceeds %d bytes", domain.ErrValidation, a.Cfg.UploadMaxBytes)
			}
			raw.ReferenceImageData = data
			raw.ReferenceImageName = header.Filename
		}
		return raw, nil
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return raw, fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	raw.Flow = req.Flow
	raw.DesignText = req.DesignText
	raw.GarmentType = req.GarmentType
	raw.Position = req.Position
	raw.Style = req.Style
	raw.ColorScheme = req.ColorScheme
	raw.ReferenceImageURL = req.ReferenceImageURL
	return raw, nil
}

type recordResponse struct {
	ID          string `json:"id"`
	PromptText  string `json:"prompt_text"`
	Style       string `json:"style,omitempty"`
	ColorScheme string `json:"color_scheme,omitempty"`
	GarmentType string `json:"garment_type"`
	Position    string `json:"position"`
	ImageURL    string `json:"image_url"`
	CreatedAt   string `json:"created_at"`
}

func toRecordResponse(rec domain.GenerationRecord) recordResponse {
	return recordResponse{
		ID:          rec.ID.String(),
		PromptText:  rec.PromptText,
		Style:       rec.Style,
		ColorScheme: rec.ColorScheme,
		GarmentType: string(rec.GarmentType),
		Position:    string(rec.Position),
		ImageURL:    rec.ImageURL,
		CreatedAt:   rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// DesignsList returns the caller's generation history, newest first.
func (a *App) DesignsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, fmt.Errorf("%w: sign in to view your designs", domain.ErrUnauthorized))
		return
	}
	limit := queryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	records, err := a.Q.ListGenerationRecords(r.Context(), db.ListGenerationRecordsParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	a.json(w, http.StatusOK, map[string]any{"designs": out})
}

// DesignsGet returns a single record scoped to its owner.
func (a *App) DesignsGet(w http.ResponseWriter, r *http.Request) {
	rec, err := a.loadRecord(r)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toRecordResponse(rec))
}

// DesignMockup composites the design's artwork onto a garment photo and
// streams the result as PNG. Garment and position default to the ones
// the design was generated for.
func (a *App) DesignMockup(w http.ResponseWriter, r *http.Request) {
	rec, err := a.loadRecord(r)
	if err != nil {
		a.domainError(w, err)
		return
	}
	garment := rec.GarmentType
	if v := r.URL.Query().Get("garment_type"); v != "" {
		parsed, ok := domain.ParseGarmentType(v)
		if !ok {
			a.domainError(w, fmt.Errorf("%w: unsupported garment type %q", domain.ErrValidation, v))
			return
		}
		garment = parsed
	}
	position := rec.Position
	if v := r.URL.Query().Get("position"); v != "" {
		parsed, ok := domain.ParsePosition(v)
		if !ok {
			a.domainError(w, fmt.Errorf("%w: unsupported position %q", domain.ErrValidation, v))
			return
		}
		position = parsed
	}

	data, _, err := a.fetchArtwork(r.Context(), rec.ImageURL)
	if err != nil {
		a.domainError(w, fmt.Errorf("%w: fetch artwork: %v", domain.ErrStorage, err))
		return
	}
	overlay, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		a.domainError(w, fmt.Errorf("%w: decode artwork: %v", domain.ErrStorage, err))
		return
	}
	composed, err := a.Compositor.Render(r.Context(), garment, position, overlay)
	if err != nil {
		a.domainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := imaging.Encode(w, composed, imaging.PNG); err != nil {
		a.Log.Error().Err(err).Msg("encode mockup png")
	}
}

// DesignDownload packages the artwork with its front and back mockups
// into a zip archive.
func (a *App) DesignDownload(w http.ResponseWriter, r *http.Request) {
	rec, err := a.loadRecord(r)
	if err != nil {
		a.domainError(w, err)
		return
	}
	data, contentType, err := a.fetchArtwork(r.Context(), rec.ImageURL)
	if err != nil {
		a.domainError(w, fmt.Errorf("%w: fetch artwork: %v", domain.ErrStorage, err))
		return
	}
	assets := []zip.Asset{{
		Filename: "artwork" + extensionForContentType(contentType),
		MIME:     contentType,
		Data:     data,
	}}

	if overlay, err := imaging.Decode(bytes.NewReader(data)); err == nil {
		for _, position := range []domain.Position{domain.PositionFront, domain.PositionBack} {
			composed, err := a.Compositor.Render(r.Context(), rec.GarmentType, position, overlay)
			if err != nil {
				continue
			}
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, composed, imaging.PNG); err != nil {
				continue
			}
			assets = append(assets, zip.Asset{
				Filename: fmt.Sprintf("mockup_%s_%s.png", rec.GarmentType, position),
				MIME:     "image/png",
				Data:     buf.Bytes(),
			})
		}
	}

	archive := zip.ArchiveAssets(assets)
	if archive == nil {
		a.domainError(w, fmt.Errorf("%w: build design archive", domain.ErrStorage))
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="design-`+rec.ID.String()+`.zip"`)
	_, _ = w.Write(archive)
}

// fetchArtwork resolves a record's image. Owned objects are read
// straight from storage; everything else goes through the fetcher.
func (a *App) fetchArtwork(ctx context.Context, rawURL string) ([]byte, string, error) {
	if bucket, key, ok := a.Store.ParseOwnedURL(rawURL); ok {
		data, err := a.Store.Download(ctx, bucket, key)
		if err != nil {
			return nil, "", err
		}
		return data, http.DetectContentType(data), nil
	}
	return a.Fetcher.Fetch(ctx, rawURL)
}

func (a *App) loadRecord(r *http.Request) (domain.GenerationRecord, error) {
	userID := a.currentUserID(r)
	if userID == "" {
		return domain.GenerationRecord{}, fmt.Errorf("%w: sign in to view your designs", domain.ErrUnauthorized)
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return domain.GenerationRecord{}, fmt.Errorf("%w: invalid design id", domain.ErrValidation)
	}
	rec, err := a.Q.GetGenerationRecord(r.Context(), id, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GenerationRecord{}, fmt.Errorf("%w: design %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.GenerationRecord{}, err
	}
	return rec, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func extensionForContentType(contentType string) string {
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

package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/printforge/server/internal/domain"
)

// UploadReference accepts a reference image and stores it so the
// pattern flow can point the generation service at a stable URL.
func (a *App) UploadReference(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.Cfg.UploadMaxBytes); err != nil {
		a.domainError(w, fmt.Errorf("%w: parse multipart form: %v", domain.ErrValidation, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.domainError(w, fmt.Errorf("%w: missing file field", domain.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, a.Cfg.UploadMaxBytes+1))
	if err != nil {
		a.domainError(w, fmt.Errorf("%w: read upload: %v", domain.ErrValidation, err))
		return
	}
	if int64(len(data)) > a.Cfg.UploadMaxBytes {
		a.domainError(w, fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrValidation, a.Cfg.UploadMaxBytes))
		return
	}

	// Sniffed type wins over whatever the client declared.
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		a.domainError(w, fmt.Errorf("%w: upload is %s, expected an image", domain.ErrValidation, contentType))
		return
	}

	key := "references/" + uuid.NewString() + extensionForContentType(contentType)
	if err := a.Store.Upload(r.Context(), a.Cfg.ReferencesBucket, key, data, contentType); err != nil {
		a.domainError(w, fmt.Errorf("%w: store reference image: %v", domain.ErrStorage, err))
		return
	}

	a.json(w, http.StatusCreated, map[string]string{
		"key":      key,
		"url":      a.Store.PublicURL(a.Cfg.ReferencesBucket, key),
		"filename": header.Filename,
	})
}

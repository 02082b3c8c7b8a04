package handlers

import (
	"fmt"
	"net/http"

	"github.com/printforge/server/internal/domain"
	"github.com/printforge/server/internal/mockup"
)

type geometryResponse struct {
	GarmentType string                 `json:"garment_type"`
	Position    string                 `json:"position"`
	Geometry    mockup.Geometry        `json:"geometry"`
	Placement   *mockup.PixelPlacement `json:"placement,omitempty"`
}

// MockupGeometry exposes the print area table so storefront clients can
// preview placements without a server round trip per frame. With
// garment_type and position it returns that single entry, otherwise the
// full table. When canvas_w and canvas_h are supplied, each entry also
// carries the geometry projected onto that canvas in pixels.
func (a *App) MockupGeometry(w http.ResponseWriter, r *http.Request) {
	garmentParam := r.URL.Query().Get("garment_type")
	positionParam := r.URL.Query().Get("position")
	canvasW := queryInt(r, "canvas_w", 0)
	canvasH := queryInt(r, "canvas_h", 0)
	project := func(geom mockup.Geometry) *mockup.PixelPlacement {
		if canvasW <= 0 || canvasH <= 0 {
			return nil
		}
		placement := mockup.Placement(geom, canvasW, canvasH)
		return &placement
	}

	if garmentParam != "" || positionParam != "" {
		garment, ok := domain.ParseGarmentType(garmentParam)
		if !ok {
			a.domainError(w, fmt.Errorf("%w: unsupported garment type %q", domain.ErrValidation, garmentParam))
			return
		}
		position := domain.PositionFront
		if positionParam != "" {
			position, ok = domain.ParsePosition(positionParam)
			if !ok {
				a.domainError(w, fmt.Errorf("%w: unsupported position %q", domain.ErrValidation, positionParam))
				return
			}
		}
		geom, err := mockup.ResolveGeometry(garment, position)
		if err != nil {
			a.domainError(w, err)
			return
		}
		a.json(w, http.StatusOK, geometryResponse{
			GarmentType: string(garment),
			Position:    string(position),
			Geometry:    geom,
			Placement:   project(geom),
		})
		return
	}

	var out []geometryResponse
	for _, garment := range domain.GarmentTypes() {
		for _, position := range []domain.Position{domain.PositionFront, domain.PositionBack} {
			geom, err := mockup.ResolveGeometry(garment, position)
			if err != nil {
				a.domainError(w, err)
				return
			}
			out = append(out, geometryResponse{
				GarmentType: string(garment),
				Position:    string(position),
				Geometry:    geom,
				Placement:   project(geom),
			})
		}
	}
	a.json(w, http.StatusOK, map[string]any{"placements": out})
}

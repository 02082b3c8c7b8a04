package mockup

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/printforge/server/internal/domain"
	"github.com/printforge/server/internal/storage"
)

// Compose scales the overlay to the geometry's width, preserving its
// aspect ratio, and draws it onto base at the geometry's offset. The
// inputs are not modified.
func Compose(base, overlay image.Image, geom Geometry) image.Image {
	bounds := base.Bounds()
	targetW := int(float64(bounds.Dx())*geom.WidthPercent/100 + 0.5)
	if targetW < 1 {
		targetW = 1
	}
	scaled := imaging.Resize(overlay, targetW, 0, imaging.Lanczos)
	return imaging.Overlay(base, scaled, PlacementPoint(geom, bounds), 1.0)
}

// Compositor renders garment previews by compositing generated artwork
// over the base mockup photos held in the local assets store.
type Compositor struct {
	assets *storage.FileStore
}

func NewCompositor(assets *storage.FileStore) *Compositor {
	return &Compositor{assets: assets}
}

// Render loads the base mockup for (garment, position) and composites
// the overlay into its print area.
func (c *Compositor) Render(ctx context.Context, garment domain.GarmentType, position domain.Position, overlay image.Image) (image.Image, error) {
	geom, err := ResolveGeometry(garment, position)
	if err != nil {
		return nil, err
	}
	key, err := BaseImageKey(garment, position)
	if err != nil {
		return nil, err
	}
	raw, err := c.assets.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: read base mockup %s: %v", domain.ErrConfiguration, key, err)
	}
	base, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode base mockup %s: %v", domain.ErrConfiguration, key, err)
	}
	return Compose(base, overlay, geom), nil
}

// ValidateAssets checks at boot that every garment and position the
// storefront offers resolves to geometry and a readable base image, so
// missing assets surface at startup instead of on the first request.
func (c *Compositor) ValidateAssets() error {
	for _, garment := range domain.GarmentTypes() {
		for _, position := range []domain.Position{domain.PositionFront, domain.PositionBack} {
			if _, err := ResolveGeometry(garment, position); err != nil {
				return err
			}
			key, err := BaseImageKey(garment, position)
			if err != nil {
				return err
			}
			if !c.assets.Exists(key) {
				return fmt.Errorf("%w: missing base mockup asset %s", domain.ErrConfiguration, key)
			}
		}
	}
	return nil
}

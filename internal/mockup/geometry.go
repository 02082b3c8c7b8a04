package mockup

import (
	"fmt"
	"image"

	"github.com/printforge/server/internal/domain"
)

// Geometry is a percentage-based rectangle describing where artwork is
// rendered relative to the base mockup canvas.
type Geometry struct {
	WidthPercent float64 `json:"width_percent"`
	LeftPercent  float64 `json:"left_percent"`
	TopPercent   float64 `json:"top_percent"`
}

// placements maps every (garment, position) the storefront exposes to
// its print area. A missing back entry falls back to the garment's
// front entry; a garment with neither is a configuration error.
var placements = map[domain.GarmentType]map[domain.Position]Geometry{
	domain.GarmentTShirt: {
		domain.PositionFront: {WidthPercent: 38, LeftPercent: 31, TopPercent: 24},
		domain.PositionBack:  {WidthPercent: 40, LeftPercent: 30, TopPercent: 20},
	},
	domain.GarmentHoodie: {
		// Front placement sits above the kangaroo pocket.
		domain.PositionFront: {WidthPercent: 30, LeftPercent: 35, TopPercent: 30},
		domain.PositionBack:  {WidthPercent: 40, LeftPercent: 30, TopPercent: 22},
	},
	domain.GarmentPolo: {
		// Chest crest rather than a full-width print.
		domain.PositionFront: {WidthPercent: 14, LeftPercent: 58, TopPercent: 22},
		domain.PositionBack:  {WidthPercent: 38, LeftPercent: 31, TopPercent: 24},
	},
	domain.GarmentTops: {
		domain.PositionFront: {WidthPercent: 36, LeftPercent: 32, TopPercent: 26},
	},
	domain.GarmentSweatshirt: {
		domain.PositionFront: {WidthPercent: 38, LeftPercent: 31, TopPercent: 26},
		domain.PositionBack:  {WidthPercent: 40, LeftPercent: 30, TopPercent: 22},
	},
}

// baseImages maps (garment, position) to the mockup photo key inside
// the assets store, with the same fallback-to-front rule.
var baseImages = map[domain.GarmentType]map[domain.Position]string{
	domain.GarmentTShirt: {
		domain.PositionFront: "t-shirt_front.png",
		domain.PositionBack:  "t-shirt_back.png",
	},
	domain.GarmentHoodie: {
		domain.PositionFront: "hoodie_front.png",
		domain.PositionBack:  "hoodie_back.png",
	},
	domain.GarmentPolo: {
		domain.PositionFront: "polo_front.png",
		domain.PositionBack:  "polo_back.png",
	},
	domain.GarmentTops: {
		domain.PositionFront: "tops_front.png",
	},
	domain.GarmentSweatshirt: {
		domain.PositionFront: "sweatshirt_front.png",
		domain.PositionBack:  "sweatshirt_back.png",
	},
}

// ResolveGeometry returns the print area for (garment, position),
// falling back to the garment's front entry. A garment with no front
// entry indicates a shipped configuration gap and is reported loudly,
// never silently skipped.
func ResolveGeometry(garment domain.GarmentType, position domain.Position) (Geometry, error) {
	byPos, ok := placements[garment]
	if !ok {
		return Geometry{}, fmt.Errorf("%w: no overlay geometry for garment %q", domain.ErrConfiguration, garment)
	}
	if g, ok := byPos[position]; ok {
		return g, nil
	}
	if g, ok := byPos[domain.PositionFront]; ok {
		return g, nil
	}
	return Geometry{}, fmt.Errorf("%w: no overlay geometry for garment %q position %q", domain.ErrConfiguration, garment, position)
}

// BaseImageKey returns the mockup photo key for (garment, position)
// with the same fallback-to-front rule as ResolveGeometry.
func BaseImageKey(garment domain.GarmentType, position domain.Position) (string, error) {
	byPos, ok := baseImages[garment]
	if !ok {
		return "", fmt.Errorf("%w: no base mockup for garment %q", domain.ErrConfiguration, garment)
	}
	if key, ok := byPos[position]; ok {
		return key, nil
	}
	if key, ok := byPos[domain.PositionFront]; ok {
		return key, nil
	}
	return "", fmt.Errorf("%w: no base mockup for garment %q position %q", domain.ErrConfiguration, garment, position)
}

// PixelPlacement is a geometry projected onto a concrete canvas size,
// for clients that composite on their own.
type PixelPlacement struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Width int `json:"width"`
}

// Placement projects geom onto a canvas of the given size.
func Placement(geom Geometry, canvasW, canvasH int) PixelPlacement {
	return PixelPlacement{
		X:     int(float64(canvasW)*geom.LeftPercent/100 + 0.5),
		Y:     int(float64(canvasH)*geom.TopPercent/100 + 0.5),
		Width: int(float64(canvasW)*geom.WidthPercent/100 + 0.5),
	}
}

// PlacementPoint is the overlay's top-left corner on the base canvas.
func PlacementPoint(geom Geometry, bounds image.Rectangle) image.Point {
	return image.Pt(
		bounds.Min.X+int(float64(bounds.Dx())*geom.LeftPercent/100+0.5),
		bounds.Min.Y+int(float64(bounds.Dy())*geom.TopPercent/100+0.5),
	)
}

package mockup

import (
	"errors"
	"image"
	"testing"

	"github.com/printforge/server/internal/domain"
)

func TestResolveGeometryCoversEveryGarmentAndPosition(t *testing.T) {
	for _, garment := range domain.GarmentTypes() {
		for _, position := range []domain.Position{domain.PositionFront, domain.PositionBack} {
			geom, err := ResolveGeometry(garment, position)
			if err != nil {
				t.Fatalf("ResolveGeometry(%s, %s) error = %v", garment, position, err)
			}
			if geom.WidthPercent <= 0 || geom.WidthPercent > 100 {
				t.Fatalf("ResolveGeometry(%s, %s) width = %v", garment, position, geom.WidthPercent)
			}
			if _, err := BaseImageKey(garment, position); err != nil {
				t.Fatalf("BaseImageKey(%s, %s) error = %v", garment, position, err)
			}
		}
	}
}

func TestResolveGeometryFallsBackToFront(t *testing.T) {
	// Tops has no back entry on purpose.
	back, err := ResolveGeometry(domain.GarmentTops, domain.PositionBack)
	if err != nil {
		t.Fatalf("ResolveGeometry error = %v", err)
	}
	front, err := ResolveGeometry(domain.GarmentTops, domain.PositionFront)
	if err != nil {
		t.Fatalf("ResolveGeometry error = %v", err)
	}
	if back != front {
		t.Fatalf("back = %+v, want front %+v", back, front)
	}

	backKey, err := BaseImageKey(domain.GarmentTops, domain.PositionBack)
	if err != nil {
		t.Fatalf("BaseImageKey error = %v", err)
	}
	if backKey != "tops_front.png" {
		t.Fatalf("backKey = %q, want %q", backKey, "tops_front.png")
	}
}

func TestResolveGeometryUnknownGarment(t *testing.T) {
	_, err := ResolveGeometry(domain.GarmentType("cape"), domain.PositionFront)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
	_, err = BaseImageKey(domain.GarmentType("cape"), domain.PositionFront)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}

func TestPlacementProjection(t *testing.T) {
	geom := Geometry{WidthPercent: 40, LeftPercent: 30, TopPercent: 20}
	got := Placement(geom, 1000, 1200)
	want := PixelPlacement{X: 300, Y: 240, Width: 400}
	if got != want {
		t.Fatalf("Placement() = %+v, want %+v", got, want)
	}

	pt := PlacementPoint(geom, image.Rect(0, 0, 1000, 1200))
	if pt != image.Pt(300, 240) {
		t.Fatalf("PlacementPoint() = %v, want %v", pt, image.Pt(300, 240))
	}

	// A base image whose bounds do not start at the origin still lands
	// relative to its own top-left corner.
	pt = PlacementPoint(geom, image.Rect(100, 100, 1100, 1300))
	if pt != image.Pt(400, 340) {
		t.Fatalf("PlacementPoint() offset bounds = %v, want %v", pt, image.Pt(400, 340))
	}
}

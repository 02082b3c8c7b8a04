package domain

import "strings"

// GarmentType enumerates the apparel classes a design can be printed on.
type GarmentType string

const (
	GarmentTShirt     GarmentType = "t-shirt"
	GarmentHoodie     GarmentType = "hoodie"
	GarmentPolo       GarmentType = "polo"
	GarmentTops       GarmentType = "tops"
	GarmentSweatshirt GarmentType = "sweatshirt"
)

// Position enumerates where artwork is placed on a garment.
type Position string

const (
	PositionFront Position = "front"
	PositionBack  Position = "back"
)

// GarmentTypes lists every garment the storefront exposes.
func GarmentTypes() []GarmentType {
	return []GarmentType{GarmentTShirt, GarmentHoodie, GarmentPolo, GarmentTops, GarmentSweatshirt}
}

// ParseGarmentType sanitizes free-form input into a supported garment type.
func ParseGarmentType(s string) (GarmentType, bool) {
	switch GarmentType(strings.ToLower(strings.TrimSpace(s))) {
	case GarmentTShirt:
		return GarmentTShirt, true
	case GarmentHoodie:
		return GarmentHoodie, true
	case GarmentPolo:
		return GarmentPolo, true
	case GarmentTops:
		return GarmentTops, true
	case GarmentSweatshirt:
		return GarmentSweatshirt, true
	}
	return "", false
}

// ParsePosition sanitizes free-form input into a supported position.
func ParsePosition(s string) (Position, bool) {
	switch Position(strings.ToLower(strings.TrimSpace(s))) {
	case PositionFront:
		return PositionFront, true
	case PositionBack:
		return PositionBack, true
	}
	return "", false
}

package slidezone

import (
	"fmt"
	"math"
	"strings"
)

// ZoneUnit selects how ZoneConfig sizes and offsets are interpreted.
type ZoneUnit string

const (
	// UnitPercent interprets width and offsetX against the slide width and
	// height and offsetY against the slide height.
	UnitPercent ZoneUnit = "percent"
	// UnitAbsolute interprets all values as EMU.
	UnitAbsolute ZoneUnit = "absolute"

	// Physical lengths, converted to EMU. Pixels are 96 DPI.
	UnitInch       ZoneUnit = "in"
	UnitCentimeter ZoneUnit = "cm"
	UnitMillimeter ZoneUnit = "mm"
	UnitPoint      ZoneUnit = "pt"
	UnitPixel      ZoneUnit = "px"
)

// Anchor is the slide corner zone offsets are measured from.
type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
)

// ZoneConfig declares an exclusion zone independently of any slide size.
type ZoneConfig struct {
	Unit    ZoneUnit `yaml:"unit" json:"unit"`
	Anchor  Anchor   `yaml:"anchor" json:"anchor"`
	Width   float64  `yaml:"width" json:"width"`
	Height  float64  `yaml:"height" json:"height"`
	OffsetX float64  `yaml:"offset_x" json:"offset_x"`
	OffsetY float64  `yaml:"offset_y" json:"offset_y"`
}

// DefaultZoneConfig returns a zone covering the bottom-right 30% x 40% of the slide.
func DefaultZoneConfig() ZoneConfig {
	return ZoneConfig{
		Unit:   UnitPercent,
		Anchor: AnchorBottomRight,
		Width:  30,
		Height: 40,
	}
}

func (c ZoneConfig) isPercent() bool {
	return c.Unit == "" || c.Unit == UnitPercent
}

// Validate checks the configuration and returns an error describing all
// problems found, or nil. ResolveZone accepts invalid configurations too;
// Validate only tells the caller they are probably mistakes.
func (c ZoneConfig) Validate() error {
	var errs []string

	_, isLength := emuPerUnit[c.Unit]
	switch {
	case c.Unit == "", c.Unit == UnitPercent, c.Unit == UnitAbsolute, isLength:
	default:
		errs = append(errs, fmt.Sprintf("unknown unit %q (treated as absolute)", c.Unit))
	}
	switch c.Anchor {
	case "", AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight:
	default:
		errs = append(errs, fmt.Sprintf("unknown anchor %q (treated as bottom-right)", c.Anchor))
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"offset_x", c.OffsetX},
		{"offset_y", c.OffsetY},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			errs = append(errs, f.name+" must be finite")
			continue
		}
		if f.value < 0 {
			errs = append(errs, f.name+" is negative")
		}
	}
	if c.isPercent() {
		if c.Width > 100 {
			errs = append(errs, "width exceeds 100 percent")
		}
		if c.Height > 100 {
			errs = append(errs, "height exceeds 100 percent")
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid zone config:\n  %s", strings.Join(errs, "\n  "))
}

// ResolveZone converts cfg into an absolute rectangle for a slide of the
// given size in EMU. The resulting x and y are never negative; the zone may
// extend past the right or bottom edge.
func ResolveZone(cfg ZoneConfig, slideWidth, slideHeight float64) Rectangle {
	width, height := cfg.Width, cfg.Height
	offsetX, offsetY := cfg.OffsetX, cfg.OffsetY
	if cfg.isPercent() {
		width = slideWidth * width / 100
		offsetX = slideWidth * offsetX / 100
		height = slideHeight * height / 100
		offsetY = slideHeight * offsetY / 100
	} else {
		width = lengthToEMU(width, cfg.Unit)
		height = lengthToEMU(height, cfg.Unit)
		offsetX = lengthToEMU(offsetX, cfg.Unit)
		offsetY = lengthToEMU(offsetY, cfg.Unit)
	}

	var x, y float64
	switch cfg.Anchor {
	case AnchorTopLeft, AnchorBottomLeft:
		x = offsetX
	default:
		x = slideWidth - width - offsetX
	}
	switch cfg.Anchor {
	case AnchorTopLeft, AnchorTopRight:
		y = offsetY
	default:
		y = slideHeight - height - offsetY
	}

	return Rectangle{
		X:      math.Max(0, x),
		Y:      math.Max(0, y),
		Width:  width,
		Height: height,
	}
}

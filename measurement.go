package slidezone

// Lengths in EMU (English Metric Units). Pixels assume 96 DPI.
const (
	emuPerInch       = 914400
	emuPerCentimeter = 360000
	emuPerMillimeter = 36000
	emuPerPoint      = 12700
	emuPerPixel      = 9525
)

// emuPerUnit is the size of one ZoneConfig length unit in EMU.
var emuPerUnit = map[ZoneUnit]float64{
	UnitInch:       emuPerInch,
	UnitCentimeter: emuPerCentimeter,
	UnitMillimeter: emuPerMillimeter,
	UnitPoint:      emuPerPoint,
	UnitPixel:      emuPerPixel,
}

// lengthToEMU converts v from unit to EMU. Values in any other unit,
// including absolute, are returned unchanged.
func lengthToEMU(v float64, unit ZoneUnit) float64 {
	if n, ok := emuPerUnit[unit]; ok {
		return v * n
	}
	return v
}

// EMUToInch converts EMU to inches.
func EMUToInch(emu float64) float64 {
	return emu / emuPerInch
}

// EMUToPixel converts EMU to 96 DPI screen pixels.
func EMUToPixel(emu float64) float64 {
	return emu / emuPerPixel
}

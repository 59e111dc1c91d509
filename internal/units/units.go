// Package units provides shared constants and conversions for angle and
// length units of optical metrics
package units

import (
	"math"
	"strings"
)

// Angle unit constants
const (
	Radian      = "rad"
	Milliradian = "mrad"
	Arcsecond   = "arcsec"
	Milliarc    = "mas"
)

// Length unit constants
const (
	Meter      = "m"
	Micrometer = "um"
	Nanometer  = "nm"
)

// RadToArcsec is the number of arcseconds in one radian.
const RadToArcsec = 180 * 3600 / math.Pi

// ValidAngleUnits contains all valid angle unit values
var ValidAngleUnits = []string{Radian, Milliradian, Arcsecond, Milliarc}

// ValidLengthUnits contains all valid length unit values
var ValidLengthUnits = []string{Meter, Micrometer, Nanometer}

// IsValidAngle checks if the given unit is a known angle unit
func IsValidAngle(unit string) bool {
	for _, u := range ValidAngleUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// IsValidLength checks if the given unit is a known length unit
func IsValidLength(unit string) bool {
	for _, u := range ValidLengthUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// GetValidAngleUnitsString returns a comma-separated string of angle units for error messages
func GetValidAngleUnitsString() string {
	return strings.Join(ValidAngleUnits, ", ")
}

// ToMas converts an angle in radians to milli-arcseconds.
func ToMas(rad float64) float64 {
	return rad * RadToArcsec * 1e3
}

// FromMas converts an angle in milli-arcseconds to radians.
func FromMas(mas float64) float64 {
	return mas / (RadToArcsec * 1e3)
}

// AngleFactor is the multiplier from radians to the target unit.
// Unknown units default to radians.
func AngleFactor(target string) float64 {
	switch target {
	case Milliradian:
		return 1e3
	case Arcsecond:
		return RadToArcsec
	case Milliarc:
		return RadToArcsec * 1e3
	default:
		return 1
	}
}

// LengthFactor is the multiplier from meters to the target unit.
// Unknown units default to meters.
func LengthFactor(target string) float64 {
	switch target {
	case Micrometer:
		return 1e6
	case Nanometer:
		return 1e9
	default:
		return 1
	}
}

// ConvertAngle converts an angle from radians to the target units
func ConvertAngle(rad float64, target string) float64 {
	return rad * AngleFactor(target)
}

// ConvertLength converts a length from meters to the target units
func ConvertLength(m float64, target string) float64 {
	return m * LengthFactor(target)
}

// Exponent10 is the power of ten of a length unit relative to meters: a
// metric in meters times 10^-Exponent10 is in that unit.
func Exponent10(target string) int {
	switch target {
	case Micrometer:
		return -6
	case Nanometer:
		return -9
	default:
		return 0
	}
}

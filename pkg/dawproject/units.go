package dawproject

import (
	"fmt"
	"math"
)

// DBToLinear converts a decibel value to linear gain.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear gain to decibels. Zero gain maps to -inf.
func LinearToDB(gain float64) float64 {
	return 20 * math.Log10(gain)
}

// Linear returns the parameter value as linear gain, honoring the unit tag.
// Normalized values span the declared min/max range; without declared
// bounds the common 0..2 gain range is assumed.
func (p *RealParameter) Linear() (float64, error) {
	switch p.Unit {
	case UnitLinear, "":
		return p.Value, nil
	case UnitDecibel:
		return DBToLinear(p.Value), nil
	case UnitNormalized:
		if p.Max != nil {
			min := 0.0
			if p.Min != nil {
				min = *p.Min
			}
			return min + p.Value*(*p.Max-min), nil
		}
		return p.Value * 2, nil
	case UnitPercent:
		return p.Value / 100, nil
	}
	return 0, fmt.Errorf("cannot read unit %q as linear gain", p.Unit)
}

// Normalized returns the parameter value mapped into 0..1, honoring the
// unit tag and the declared min/max range.
func (p *RealParameter) Normalized() (float64, error) {
	switch p.Unit {
	case UnitNormalized, "":
		return p.Value, nil
	case UnitPercent:
		return p.Value / 100, nil
	case UnitLinear:
		if p.Max != nil {
			min := 0.0
			if p.Min != nil {
				min = *p.Min
			}
			if *p.Max == min {
				return 0, fmt.Errorf("degenerate parameter range %v..%v", min, *p.Max)
			}
			return (p.Value - min) / (*p.Max - min), nil
		}
		return p.Value, nil
	}
	return 0, fmt.Errorf("cannot normalize unit %q", p.Unit)
}

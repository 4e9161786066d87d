package exchange

import (
	"math"
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/datetime"
	"github.com/iwvelando/uva-calculator/pkg/mathutil"
)

// Band is the exchange rate corridor for a given month.
type Band struct {
	Floor         float64 `json:"floor"`
	Ceiling       float64 `json:"ceiling"`
	MonthsElapsed int     `json:"monthsElapsed"`
}

// BandConfig anchors the band: base values apply at the anchor month and drift
// by whole calendar months afterwards.
type BandConfig struct {
	Anchor      time.Time
	BaseFloor   float64
	BaseCeiling float64
}

// DefaultBandConfig returns the band that started on 2025-04-01 at 1000/1400.
func DefaultBandConfig() BandConfig {
	return BandConfig{
		Anchor:      datetime.MustParseTime(constants.DateLayout, constants.DefaultBandAnchor),
		BaseFloor:   constants.DefaultBandFloor,
		BaseCeiling: constants.DefaultBandCeiling,
	}
}

// At computes the band for the given moment.
func (c BandConfig) At(now time.Time) Band {
	return ComputeBand(now, c.Anchor, c.BaseFloor, c.BaseCeiling)
}

// ComputeBand decays the floor and grows the ceiling by 1% per elapsed month,
// compounded, rounding each to whole ARS. Dates before the anchor use month 0.
func ComputeBand(now, anchor time.Time, baseFloor, baseCeiling float64) Band {
	months := datetime.MonthsElapsed(now, anchor)
	return Band{
		Floor:         mathutil.RoundToUnit(baseFloor * math.Pow(constants.BandFloorMonthlyFactor, float64(months))),
		Ceiling:       mathutil.RoundToUnit(baseCeiling * math.Pow(constants.BandCeilingMonthlyFactor, float64(months))),
		MonthsElapsed: months,
	}
}

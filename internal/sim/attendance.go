package sim

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

type AttendanceInput struct {
	Month       int
	HomeFanbase int
	AwayFanbase int
	Weather     Weather
	// Perf and Hist are normalized ranks in [0,1], 1 being top of the table.
	Perf  float64
	Hist  float64
	Promo decimal.Decimal
}

type Attendance struct {
	Home  int `json:"home"`
	Away  int `json:"away"`
	Total int `json:"total"`
}

func ComputeAttendance(p Params, in AttendanceInput) Attendance {
	ap := p.Attendance
	gw := p.WeatherEffect(in.Weather)

	promo := math.Max(0, in.Promo.InexactFloat64())
	oppRatio := math.Max(float64(in.AwayFanbase)/ap.FanbaseRef, 0.001)
	event := 0.0
	if slices.Contains(ap.EventMonths, in.Month) {
		event = ap.EventBoost
	}
	z := ap.Beta0 +
		ap.BetaW*gw +
		ap.Beta1*in.Perf +
		ap.Beta2*in.Hist +
		ap.Beta3*math.Log1p(promo/ap.PromoScale) +
		ap.Beta4*math.Log(oppRatio) +
		ap.Beta5*event

	home := min(int(float64(in.HomeFanbase)*sigmoid(z)), ap.Capacity)
	away := int(float64(in.AwayFanbase) * ap.AwayBaseRate * math.Exp(ap.AwayWeatherKappa*gw))
	away = min(away, int(ap.AwayMaxRatio*float64(ap.Capacity)))
	home, away = max(home, 0), max(away, 0)

	total := home + away
	if total <= ap.Capacity {
		return Attendance{Home: home, Away: away, Total: total}
	}
	ratio := float64(ap.Capacity) / float64(total)
	scaledHome := int(float64(home) * ratio)
	scaledAway := int(float64(away) * ratio)
	scaledHome += ap.Capacity - (scaledHome + scaledAway)
	return Attendance{Home: scaledHome, Away: scaledAway, Total: ap.Capacity}
}

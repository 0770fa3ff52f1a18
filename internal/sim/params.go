package sim

import (
	"errors"
	"fmt"
	"math"
)

// Params holds the match and attendance model coefficients.
type Params struct {
	HomeAdvantage float64 `yaml:"home_advantage"`
	K             float64 `yaml:"k"`
	D0            float64 `yaml:"d0"`
	C             float64 `yaml:"c"`
	StreakFactor  float64 `yaml:"streak_factor"`
	StreakCap     float64 `yaml:"streak_cap"`

	// Team power reference scales are in millions.
	TPAlpha float64 `yaml:"tp_alpha"`
	TPBeta  float64 `yaml:"tp_beta"`
	BRef    float64 `yaml:"b_ref"`
	ARef    float64 `yaml:"a_ref"`

	ScoreLambda float64 `yaml:"score_lambda"`
	ScoreScale  float64 `yaml:"score_scale"`

	Weather    []WeatherOption  `yaml:"weather"`
	Attendance AttendanceParams `yaml:"attendance"`
}

type AttendanceParams struct {
	Beta0            float64 `yaml:"beta0"`
	BetaW            float64 `yaml:"beta_w"`
	Beta1            float64 `yaml:"beta1"`
	Beta2            float64 `yaml:"beta2"`
	Beta3            float64 `yaml:"beta3"`
	Beta4            float64 `yaml:"beta4"`
	Beta5            float64 `yaml:"beta5"`
	FanbaseRef       float64 `yaml:"fanbase_ref"`
	PromoScale       float64 `yaml:"promo_scale"`
	EventBoost       float64 `yaml:"event_boost"`
	EventMonths      []int   `yaml:"event_months"`
	AwayBaseRate     float64 `yaml:"away_base_rate"`
	AwayWeatherKappa float64 `yaml:"away_weather_kappa"`
	AwayMaxRatio     float64 `yaml:"away_max_ratio"`
	Capacity         int     `yaml:"capacity"`
}

func DefaultParams() Params {
	return Params{
		HomeAdvantage: 3,
		K:             0.15,
		D0:            0.30,
		C:             0.08,
		StreakFactor:  0.5,
		StreakCap:     2,
		TPAlpha:       10,
		TPBeta:        1,
		BRef:          500,
		ARef:          100,
		ScoreLambda:   0.08,
		ScoreScale:    12,
		Weather: []WeatherOption{
			{Weather: Sunny, Probability: 0.55, Effect: 0},
			{Weather: Cloudy, Probability: 0.30, Effect: -0.2},
			{Weather: Rain, Probability: 0.15, Effect: -0.6},
		},
		Attendance: AttendanceParams{
			Beta0:            -1.986,
			BetaW:            1.0,
			Beta1:            0.8,
			Beta2:            0.4,
			Beta3:            0.6,
			Beta4:            0.3,
			Beta5:            0.5,
			FanbaseRef:       60000,
			PromoScale:       10_000_000,
			EventBoost:       0.4,
			EventMonths:      []int{1, 10},
			AwayBaseRate:     0.018,
			AwayWeatherKappa: 0.20,
			AwayMaxRatio:     0.20,
			Capacity:         20000,
		},
	}
}

func (p Params) Validate() error {
	var errs []error
	if p.BRef <= 0 || p.ARef <= 0 {
		errs = append(errs, errors.New("team power reference scales must be > 0"))
	}
	if p.D0 < 0 || p.D0 >= 1 {
		errs = append(errs, fmt.Errorf("d0 must be in [0,1), got %v", p.D0))
	}
	if p.ScoreScale <= 0 {
		errs = append(errs, errors.New("score_scale must be > 0"))
	}
	if len(p.Weather) == 0 {
		errs = append(errs, errors.New("at least one weather option is required"))
	}
	total := 0.0
	for _, w := range p.Weather {
		if w.Probability < 0 {
			errs = append(errs, fmt.Errorf("weather %s has negative probability", w.Weather))
		}
		total += w.Probability
	}
	if len(p.Weather) > 0 && math.Abs(total-1) > 1e-9 {
		errs = append(errs, fmt.Errorf("weather probabilities sum to %v, want 1", total))
	}
	if p.Attendance.Capacity <= 0 {
		errs = append(errs, errors.New("stadium capacity must be > 0"))
	}
	if p.Attendance.FanbaseRef <= 0 || p.Attendance.PromoScale <= 0 {
		errs = append(errs, errors.New("attendance reference scales must be > 0"))
	}
	return errors.Join(errs...)
}

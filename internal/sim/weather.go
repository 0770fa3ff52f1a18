package sim

import "github.com/google/uuid"

type Weather string

const (
	Sunny  Weather = "sunny"
	Cloudy Weather = "cloudy"
	Rain   Weather = "rain"
)

type WeatherOption struct {
	Weather     Weather `yaml:"weather"`
	Probability float64 `yaml:"probability"`
	Effect      float64 `yaml:"effect"`
}

func DrawWeather(p Params, r float64) Weather {
	acc := 0.0
	for _, w := range p.Weather {
		acc += w.Probability
		if r < acc {
			return w.Weather
		}
	}
	return p.Weather[len(p.Weather)-1].Weather
}

// FixtureWeather is the weather for a fixture; it depends only on the fixture.
func FixtureWeather(p Params, fixtureID uuid.UUID) Weather {
	return DrawWeather(p, NewKey("weather", fixtureID).Rand("weather").Float64())
}

func (p Params) WeatherEffect(w Weather) float64 {
	for _, opt := range p.Weather {
		if opt.Weather == w {
			return opt.Effect
		}
	}
	return 0
}

package weather

// The following structs mirror the weatherapi.com forecast.json response.
// Field names follow the provider so that a body relayed verbatim by the proxy
// decodes into the same shape as a direct call.

// ForecastDays is the number of days requested from the provider.
const ForecastDays = 5

type ForecastResult struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`
	Forecast Forecast `json:"forecast"`
}

type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	LocalTime string  `json:"localtime"`
}

type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type Current struct {
	TempC      float64   `json:"temp_c"`
	TempF      float64   `json:"temp_f"`
	Condition  Condition `json:"condition"`
	WindKph    float64   `json:"wind_kph"`
	WindMph    float64   `json:"wind_mph"`
	WindDir    string    `json:"wind_dir"`
	PressureMb float64   `json:"pressure_mb"`
	Humidity   int       `json:"humidity"`
	FeelsLikeC float64   `json:"feelslike_c"`
	FeelsLikeF float64   `json:"feelslike_f"`
	UV         float64   `json:"uv"`
	IsDay      int       `json:"is_day"`
}

// Daytime reports whether the provider flagged the current conditions as day.
func (c Current) Daytime() bool { return c.IsDay == 1 }

type Forecast struct {
	Days []ForecastDay `json:"forecastday"`
}

type ForecastDay struct {
	Date  string   `json:"date"`
	Day   DaySum   `json:"day"`
	Astro Astro    `json:"astro"`
	Hours []Hourly `json:"hour"`
}

type DaySum struct {
	MaxTempC          float64   `json:"maxtemp_c"`
	MaxTempF          float64   `json:"maxtemp_f"`
	MinTempC          float64   `json:"mintemp_c"`
	MinTempF          float64   `json:"mintemp_f"`
	AvgTempC          float64   `json:"avgtemp_c"`
	AvgTempF          float64   `json:"avgtemp_f"`
	Condition         Condition `json:"condition"`
	DailyChanceOfRain int       `json:"daily_chance_of_rain"`
}

type Astro struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

type Hourly struct {
	Time      string    `json:"time"`
	TempC     float64   `json:"temp_c"`
	TempF     float64   `json:"temp_f"`
	Condition Condition `json:"condition"`
}

// Today returns the first forecast day, if the provider returned any.
func (r *ForecastResult) Today() (ForecastDay, bool) {
	if r == nil || len(r.Forecast.Days) == 0 {
		return ForecastDay{}, false
	}
	return r.Forecast.Days[0], true
}

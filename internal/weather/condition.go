package weather

// Category is the coarse weather group used to pick icons and backgrounds.
type Category string

const (
	CategoryClear        Category = "clear"
	CategoryCloud        Category = "cloud"
	CategoryRain         Category = "rain"
	CategorySnow         Category = "snow"
	CategoryFog          Category = "fog"
	CategoryThunderstorm Category = "thunderstorm"
)

// ForecastCategory maps a condition code on a forecast day or hour.
func ForecastCategory(code int) Category {
	switch {
	case code == 1000:
		return CategoryClear
	case code >= 1003 && code <= 1030:
		return CategoryCloud
	case (code >= 1063 && code <= 1069) || (code >= 1180 && code <= 1201):
		return CategoryRain
	case code >= 1210 && code <= 1225:
		return CategorySnow
	default:
		return CategoryCloud
	}
}

// CurrentCategory maps the condition code shown on the current-conditions card.
// The ranges differ from ForecastCategory and must be kept as they are.
func CurrentCategory(code int) Category {
	switch {
	case code >= 200 && code < 300:
		return CategoryThunderstorm
	case code >= 300 && code < 600:
		return CategoryRain
	case code >= 600 && code < 700:
		return CategorySnow
	case code >= 700 && code < 800:
		return CategoryFog
	case code == 800:
		return CategoryClear
	default:
		return CategoryCloud
	}
}

// Scene names a page background.
type Scene string

const (
	SceneNight        Scene = "night"
	SceneClear        Scene = "clear"
	SceneThunderstorm Scene = "thunderstorm"
	SceneRain         Scene = "rain"
	SceneSnow         Scene = "snow"
	SceneCloud        Scene = "cloud"
)

// Backdrop describes the decorative background for the current conditions.
type Backdrop struct {
	Scene       Scene  `json:"scene"`
	ShowMeteors bool   `json:"show_meteors"`
	MeteorColor string `json:"meteor_color"`
}

// SelectBackdrop picks the background from the current condition code and the
// day/night flag. Night always wins.
func SelectBackdrop(code int, isDay bool) Backdrop {
	if !isDay {
		return Backdrop{Scene: SceneNight, ShowMeteors: true, MeteorColor: "white"}
	}
	switch {
	case code == 800:
		return Backdrop{Scene: SceneClear, MeteorColor: "white"}
	case code >= 200 && code < 300:
		return Backdrop{Scene: SceneThunderstorm, ShowMeteors: true, MeteorColor: "blue"}
	case code >= 300 && code < 600:
		return Backdrop{Scene: SceneRain, ShowMeteors: true, MeteorColor: "blue"}
	case code >= 600 && code < 700:
		return Backdrop{Scene: SceneSnow, ShowMeteors: true, MeteorColor: "white"}
	default:
		return Backdrop{Scene: SceneCloud, MeteorColor: "white"}
	}
}

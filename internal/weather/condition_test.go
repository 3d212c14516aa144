package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForecastCategory(t *testing.T) {
	testCases := map[int]Category{
		1000: CategoryClear,
		1003: CategoryCloud,
		1030: CategoryCloud,
		1063: CategoryRain,
		1069: CategoryRain,
		1072: CategoryCloud, // freezing drizzle falls through to the default
		1180: CategoryRain,
		1201: CategoryRain,
		1204: CategoryCloud,
		1210: CategorySnow,
		1225: CategorySnow,
		1276: CategoryCloud,
		800:  CategoryCloud,
	}
	for code, want := range testCases {
		assert.Equal(t, want, ForecastCategory(code), "code %d", code)
	}
}

func TestCurrentCategory(t *testing.T) {
	testCases := map[int]Category{
		200:  CategoryThunderstorm,
		299:  CategoryThunderstorm,
		300:  CategoryRain,
		599:  CategoryRain,
		600:  CategorySnow,
		699:  CategorySnow,
		700:  CategoryFog,
		799:  CategoryFog,
		800:  CategoryClear,
		801:  CategoryCloud,
		1000: CategoryCloud,
		199:  CategoryCloud,
	}
	for code, want := range testCases {
		assert.Equal(t, want, CurrentCategory(code), "code %d", code)
	}
}

func TestSelectBackdrop(t *testing.T) {
	testCases := []struct {
		name  string
		code  int
		isDay bool
		want  Backdrop
	}{
		{name: "Night overrides clear", code: 800, isDay: false, want: Backdrop{Scene: SceneNight, ShowMeteors: true, MeteorColor: "white"}},
		{name: "Clear day", code: 800, isDay: true, want: Backdrop{Scene: SceneClear, MeteorColor: "white"}},
		{name: "Thunderstorm", code: 211, isDay: true, want: Backdrop{Scene: SceneThunderstorm, ShowMeteors: true, MeteorColor: "blue"}},
		{name: "Rain", code: 501, isDay: true, want: Backdrop{Scene: SceneRain, ShowMeteors: true, MeteorColor: "blue"}},
		{name: "Snow", code: 601, isDay: true, want: Backdrop{Scene: SceneSnow, ShowMeteors: true, MeteorColor: "white"}},
		{name: "Fog falls back to cloud", code: 741, isDay: true, want: Backdrop{Scene: SceneCloud, MeteorColor: "white"}},
		{name: "Provider code falls back to cloud", code: 1000, isDay: true, want: Backdrop{Scene: SceneCloud, MeteorColor: "white"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectBackdrop(tc.code, tc.isDay))
		})
	}
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cor0nius/skycast/internal/weather"
)

type tempUnit int

const (
	celsius tempUnit = iota
	fahrenheit
)

func (u tempUnit) format(c, f float64) string {
	if u == fahrenheit {
		return fmt.Sprintf("%.1f°F", f)
	}
	return fmt.Sprintf("%.1f°C", c)
}

// hourOf returns the "15:04" part of a provider "2006-01-02 15:04" time.
func hourOf(t string) string {
	if i := strings.LastIndexByte(t, ' '); i >= 0 {
		return t[i+1:]
	}
	return t
}

func placeName(loc weather.Location) string {
	parts := []string{}
	for _, p := range []string{loc.Name, loc.Region, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func render(w io.Writer, res *weather.ForecastResult, unit tempUnit) error {
	if res == nil {
		return fmt.Errorf("no forecast to show")
	}
	cur := res.Current
	backdrop := weather.SelectBackdrop(cur.Condition.Code, cur.Daytime())

	fmt.Fprintln(w, placeName(res.Location))
	if res.Location.LocalTime != "" {
		fmt.Fprintf(w, "Local time: %s\n", res.Location.LocalTime)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Now: %s  %s  [%s]\n",
		unit.format(cur.TempC, cur.TempF), cur.Condition.Text, weather.CurrentCategory(cur.Condition.Code))
	wind := fmt.Sprintf("%.1f km/h", cur.WindKph)
	if unit == fahrenheit {
		wind = fmt.Sprintf("%.1f mph", cur.WindMph)
	}
	fmt.Fprintf(w, "Feels like %s | Humidity %d%% | Wind %s %s | Pressure %.0f mb | UV %.0f\n",
		unit.format(cur.FeelsLikeC, cur.FeelsLikeF), cur.Humidity, wind, cur.WindDir, cur.PressureMb, cur.UV)
	fmt.Fprintf(w, "Backdrop: %s\n", backdrop.Scene)

	if len(res.Forecast.Days) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\n%d-day forecast\n", len(res.Forecast.Days))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCONDITION\tCATEGORY\tHIGH\tLOW\tRAIN")
	for _, d := range res.Forecast.Days {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d%%\n",
			d.Date, d.Day.Condition.Text, weather.ForecastCategory(d.Day.Condition.Code),
			unit.format(d.Day.MaxTempC, d.Day.MaxTempF), unit.format(d.Day.MinTempC, d.Day.MinTempF),
			d.Day.DailyChanceOfRain)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	today, _ := res.Today()
	if len(today.Hours) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nHourly (%s, sunrise %s, sunset %s)\n", today.Date, today.Astro.Sunrise, today.Astro.Sunset)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTEMP\tCONDITION\tCATEGORY")
	for _, h := range today.Hours {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			hourOf(h.Time), unit.format(h.TempC, h.TempF), h.Condition.Text, weather.ForecastCategory(h.Condition.Code))
	}
	return tw.Flush()
}

package weather

import (
	"math"
	"strconv"
)

// Icon names one of the condition icons shipped under /static/icons.
type Icon string

const (
	IconClear   Icon = "clear"
	IconCloud   Icon = "cloud"
	IconDrizzle Icon = "drizzle"
	IconRain    Icon = "rain"
	IconSnow    Icon = "snow"
)

// Static images used around the card.
const (
	HumidityIcon = "/static/icons/humidity.svg"
	WindIcon     = "/static/icons/wind.svg"
	SearchIcon   = "/static/icons/search.svg"
)

// iconTable maps OpenWeatherMap condition codes to icons. Unknown codes fall
// back to IconClear.
var iconTable = map[string]Icon{
	"01d": IconClear,
	"01n": IconClear,
	"02d": IconCloud,
	"02n": IconCloud,
	"03d": IconCloud,
	"03n": IconCloud,
	"04d": IconCloud,
	"04n": IconCloud,
	"09d": IconDrizzle,
	"09n": IconDrizzle,
	"10d": IconRain,
	"10n": IconRain,
	"11d": IconRain,
	"11n": IconRain,
	"13d": IconSnow,
	"13n": IconSnow,
	"50d": IconCloud,
	"50n": IconCloud,
}

func LookupIcon(code string) Icon {
	if icon, ok := iconTable[code]; ok {
		return icon
	}
	return IconClear
}

// Asset is the URL path of the icon image.
func (i Icon) Asset() string {
	if i == "" {
		i = IconClear
	}
	return "/static/icons/" + string(i) + ".svg"
}

// Snapshot is the current weather for one location, ready for display.
type Snapshot struct {
	Temperature  int     `json:"temperature"`
	Humidity     int     `json:"humidity"`
	WindSpeedKmh float64 `json:"windSpeedKmh"`
	Location     string  `json:"location"`
	Icon         Icon    `json:"icon"`
}

func (s Snapshot) WindSpeedLabel() string {
	return strconv.FormatFloat(s.WindSpeedKmh, 'f', 1, 64)
}

// metersPerSecondToKmh converts and rounds to one decimal place.
func metersPerSecondToKmh(speed float64) float64 {
	return math.Round(speed*3.6*10) / 10
}

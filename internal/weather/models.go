package weather

import (
	"strconv"
	"time"
)

// SearchType labels the kind of query a user ran. The values are persisted verbatim.
type SearchType string

const (
	SearchCurrent  SearchType = "Tiempo Actual"
	SearchForecast SearchType = "Pronóstico 15 Días"
	SearchMap      SearchType = "Mapa"
)

// ForecastDays is the fixed forecast horizon requested from the weather provider.
const ForecastDays = 15

// Valid reports whether t is one of the known search types.
func (t SearchType) Valid() bool {
	switch t {
	case SearchCurrent, SearchForecast, SearchMap:
		return true
	default:
		return false
	}
}

// Location is a resolved place: what the user typed plus the provider's canonical name and coordinates.
type Location struct {
	Query       string  `json:"query"`
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Coordinates formats the location as "lat,lon" using the shortest exact decimal form.
func (l Location) Coordinates() string {
	return formatNumber(l.Lat) + "," + formatNumber(l.Lon)
}

// CurrentConditions is an instantaneous weather snapshot in the location's local time.
type CurrentConditions struct {
	Temperature float64 `json:"temperature"` // °C
	WindSpeed   float64 `json:"windspeed"`   // km/h
	Time        string  `json:"time"`        // provider local time, e.g. 2024-01-01T12:00
}

// DailyForecast is one day of the forecast horizon.
type DailyForecast struct {
	Date    string  `json:"date"`
	TempMax float64 `json:"tempMax"`
	TempMin float64 `json:"tempMin"`
}

// SearchRecord is the payload the client submits to the search log after a successful query.
type SearchRecord struct {
	SearchType SearchType `json:"search_type" validate:"required"`
	City       string     `json:"city" validate:"required"`
	Result     string     `json:"result" validate:"required"`
}

// SearchEvent is one immutable search log entry. ID and Timestamp are assigned by the store.
type SearchEvent struct {
	ID         int64      `json:"id" db:"id" goqu:"skipinsert"`
	IP         string     `json:"ip" db:"ip"`
	City       string     `json:"city" db:"city"`
	SearchType SearchType `json:"search_type" db:"search_type"`
	Result     string     `json:"result" db:"result"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp" goqu:"skipinsert"`
}

// Result is what the orchestrator hands back to the caller for display.
type Result struct {
	SearchType SearchType `json:"searchType"`
	City       string     `json:"city"`
	Location   Location   `json:"location"`
	HTML       string     `json:"html"`
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

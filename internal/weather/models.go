package weather

// ResolvedLocation is the normalized place produced by geocoding.
// It is a value: produced once per resolution and embedded into stored
// records, never persisted on its own.
type ResolvedLocation struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// DailyTemperature is one calendar day of historical min/max temperature,
// in Celsius. Date is an ISO "2006-01-02" string, matching what Open-Meteo
// returns and what we store.
type DailyTemperature struct {
	Date string  `json:"date"`
	TMin float64 `json:"tmin"`
	TMax float64 `json:"tmax"`
}

// DailyCard is one day's aggregated forecast summary. Optional fields are
// pointers: a day whose steps carry no temperature readings has nil
// TMin/TMax rather than a fabricated zero.
type DailyCard struct {
	Date        string   `json:"date"`         // ISO date
	DOW         string   `json:"dow"`          // e.g. "Fri"
	DateDisplay string   `json:"date_display"` // e.g. "Dec 14, 2025"
	TMin        *float64 `json:"tmin"`
	TMax        *float64 `json:"tmax"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	PopMax      *float64 `json:"pop_max"` // 0..1
	PopPct      *int     `json:"pop_pct"` // 0..100
}

// ForecastFeed is the OpenWeather 5-day/3-hour forecast payload, typed down
// to the fields the summarizer needs. Raw holds the verbatim response body
// for API passthrough.
type ForecastFeed struct {
	City ForecastCity   `json:"city"`
	List []ForecastStep `json:"list"`

	Raw []byte `json:"-"`
}

type ForecastCity struct {
	Name     string `json:"name"`
	Timezone int64  `json:"timezone"` // seconds offset from UTC
}

// ForecastStep is a single 3-hour forecast entry. Main and Pop are pointers
// because not every step carries them.
type ForecastStep struct {
	Dt      int64           `json:"dt"` // UTC unix seconds
	Main    *StepMain       `json:"main,omitempty"`
	Pop     *float64        `json:"pop,omitempty"` // 0..1
	Weather []StepCondition `json:"weather,omitempty"`
}

type StepMain struct {
	Temp *float64 `json:"temp,omitempty"`
}

type StepCondition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// CurrentConditions is the current-weather payload: a few typed fields for
// the UI plus the verbatim body for API passthrough.
type CurrentConditions struct {
	Name    string          `json:"name"`
	Dt      int64           `json:"dt"`
	Main    CurrentMain     `json:"main"`
	Wind    CurrentWind     `json:"wind"`
	Weather []StepCondition `json:"weather"`

	Raw []byte `json:"-"`
}

type CurrentMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
}

type CurrentWind struct {
	Speed float64 `json:"speed"`
}

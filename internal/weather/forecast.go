package weather

import (
	"math"
	"sort"
	"time"
)

// maxForecastDays caps the summary at 5 daily cards, matching the 5-day
// horizon of the 3-hour feed.
const maxForecastDays = 5

// Summarize collapses a 3-hour-resolution forecast feed into at most 5 daily
// cards, ordered by ascending date. Pure: no I/O, no clock.
//
// Each step's local calendar date is its UTC timestamp shifted by the feed's
// timezone offset and truncated in UTC. That is an offset shift, not a full
// timezone-aware conversion; DST transitions inside the window are ignored.
func Summarize(feed ForecastFeed) []DailyCard {
	offset := feed.City.Timezone

	grouped := make(map[string][]ForecastStep)
	for _, step := range feed.List {
		d := time.Unix(step.Dt+offset, 0).UTC().Format("2006-01-02")
		grouped[d] = append(grouped[d], step)
	}

	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) > maxForecastDays {
		dates = dates[:maxForecastDays]
	}

	cards := make([]DailyCard, 0, len(dates))
	for _, d := range dates {
		cards = append(cards, summarizeDay(d, grouped[d]))
	}
	return cards
}

func summarizeDay(date string, steps []ForecastStep) DailyCard {
	var tmin, tmax, popMax *float64

	for _, step := range steps {
		if step.Main != nil && step.Main.Temp != nil {
			t := *step.Main.Temp
			if tmin == nil || t < *tmin {
				v := t
				tmin = &v
			}
			if tmax == nil || t > *tmax {
				v := t
				tmax = &v
			}
		}
		if step.Pop != nil {
			p := *step.Pop
			if popMax == nil || p > *popMax {
				v := p
				popMax = &v
			}
		}
	}

	var popPct *int
	if popMax != nil {
		pct := int(math.Round(*popMax * 100))
		popPct = &pct
	}

	icon, desc := dominantCondition(steps)

	day, _ := time.Parse("2006-01-02", date)
	return DailyCard{
		Date:        date,
		DOW:         day.Format("Mon"),
		DateDisplay: day.Format("Jan 02, 2006"),
		TMin:        tmin,
		TMax:        tmax,
		Icon:        icon,
		Description: desc,
		PopMax:      popMax,
		PopPct:      popPct,
	}
}

// dominantCondition picks the most frequent (icon, description) pair across a
// day's steps. Ties break toward the first-encountered pair: pairs are walked
// in insertion order in a single pass, never via map iteration, so the result
// is stable. A step without weather data counts as the empty pair.
func dominantCondition(steps []ForecastStep) (string, string) {
	type pair struct {
		icon string
		desc string
	}

	counts := make(map[pair]int)
	var order []pair

	for _, step := range steps {
		var p pair
		if len(step.Weather) > 0 {
			p = pair{icon: step.Weather[0].Icon, desc: step.Weather[0].Description}
		}
		if _, seen := counts[p]; !seen {
			order = append(order, p)
		}
		counts[p]++
	}

	if len(order) == 0 {
		return "", ""
	}

	best := order[0]
	for _, p := range order[1:] {
		if counts[p] > counts[best] {
			best = p
		}
	}
	return best.icon, best.desc
}

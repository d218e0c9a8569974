package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weatherdesk/internal/export"
	"weatherdesk/internal/records"
	"weatherdesk/internal/store"
	"weatherdesk/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the UI pages and the JSON API into the Fiber app.
func RegisterRoutes(app *fiber.App, owm *weather.OpenWeatherClient, svc *records.Service) {
	h := &handlers{owm: owm, svc: svc}

	// UI pages
	app.Get("/", h.homePage)
	app.Get("/results", h.resultsPage)
	app.Get("/records", h.recordsPage)
	app.Get("/records/:id", h.recordDetailPage)

	// Weather lookup API
	app.Get("/api/weather", h.apiWeather)
	app.Get("/api/weather/by-coords", h.apiWeatherByCoords)

	// Record CRUD API. Export is registered before :id so "export" is not
	// parsed as a record id.
	app.Post("/api/records", h.apiCreateRecord)
	app.Get("/api/records", h.apiListRecords)
	app.Get("/api/records/export", h.apiExportRecords)
	app.Get("/api/records/:id", h.apiGetRecord)
	app.Put("/api/records/:id", h.apiUpdateRecord)
	app.Delete("/api/records/:id", h.apiDeleteRecord)
}

type handlers struct {
	owm *weather.OpenWeatherClient
	svc *records.Service
}

// statusFor maps the error taxonomy to HTTP statuses: user-facing lookup and
// validation failures are 4xx, a missing record is 404, the rest is 500.
func statusFor(err error) int {
	var resolutionErr *weather.ResolutionError
	var fetchErr *weather.FetchError
	var rangeErr *weather.RangeError
	var validationErr *records.ValidationError

	switch {
	case errors.As(err, &resolutionErr),
		errors.As(err, &fetchErr),
		errors.As(err, &rangeErr),
		errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func asFiberError(err error) error {
	return fiber.NewError(statusFor(err), err.Error())
}

// -------------------------
// Weather lookup
// -------------------------

// weatherLookup runs the full lookup pipeline for a location query:
// resolve, current conditions, 5-day forecast, daily summary.
func (h *handlers) weatherLookup(ctx context.Context, q string) (weather.ResolvedLocation, weather.CurrentConditions, weather.ForecastFeed, []weather.DailyCard, error) {
	resolved, err := h.owm.Resolve(ctx, q)
	if err != nil {
		return weather.ResolvedLocation{}, weather.CurrentConditions{}, weather.ForecastFeed{}, nil, err
	}
	current, err := h.owm.Current(ctx, resolved.Lat, resolved.Lon, "imperial")
	if err != nil {
		return weather.ResolvedLocation{}, weather.CurrentConditions{}, weather.ForecastFeed{}, nil, err
	}
	feed, err := h.owm.Forecast(ctx, resolved.Lat, resolved.Lon, "imperial")
	if err != nil {
		return weather.ResolvedLocation{}, weather.CurrentConditions{}, weather.ForecastFeed{}, nil, err
	}
	return resolved, current, feed, weather.Summarize(feed), nil
}

func (h *handlers) apiWeather(c *fiber.Ctx) error {
	q := c.Query("q")
	if err := validate.Var(q, "required,min=2,max=255"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "q must be between 2 and 255 characters")
	}

	resolved, current, _, fiveDay, err := h.weatherLookup(c.Context(), q)
	if err != nil {
		return asFiberError(err)
	}

	return c.JSON(fiber.Map{
		"resolved": resolved,
		"current":  json.RawMessage(current.Raw),
		"five_day": fiveDay,
	})
}

func (h *handlers) apiWeatherByCoords(c *fiber.Ctx) error {
	lat := c.Query("lat")
	lon := c.Query("lon")
	if lat == "" || lon == "" {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon query parameters are required")
	}

	current, err := h.owm.Current(c.Context(), c.QueryFloat("lat"), c.QueryFloat("lon"), "imperial")
	if err != nil {
		return asFiberError(err)
	}
	feed, err := h.owm.Forecast(c.Context(), c.QueryFloat("lat"), c.QueryFloat("lon"), "imperial")
	if err != nil {
		return asFiberError(err)
	}
	resolved, err := h.owm.Resolve(c.Context(), lat+","+lon)
	if err != nil {
		return asFiberError(err)
	}

	return c.JSON(fiber.Map{
		"resolved":    resolved,
		"current":     json.RawMessage(current.Raw),
		"five_day":    weather.Summarize(feed),
		"forecast_3h": json.RawMessage(feed.Raw),
	})
}

// -------------------------
// Record CRUD
// -------------------------

type recordCreateRequest struct {
	Location  string `json:"location" validate:"required,min=2,max=255"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type recordUpdateRequest struct {
	Location  *string `json:"location" validate:"omitempty,min=2,max=255"`
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// recordResponse is the JSON representation of a stored record, with dates
// rendered as ISO date strings.
type recordResponse struct {
	ID            int64                      `json:"id"`
	LocationInput string                     `json:"location_input"`
	ResolvedName  string                     `json:"resolved_name"`
	Country       string                     `json:"country"`
	State         string                     `json:"state"`
	Lat           float64                    `json:"lat"`
	Lon           float64                    `json:"lon"`
	StartDate     string                     `json:"start_date"`
	EndDate       string                     `json:"end_date"`
	DailyTemps    []weather.DailyTemperature `json:"daily_temps"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

func toRecordResponse(rec records.Record) recordResponse {
	temps := rec.DailyTemps
	if temps == nil {
		temps = []weather.DailyTemperature{}
	}
	return recordResponse{
		ID:            rec.ID,
		LocationInput: rec.LocationInput,
		ResolvedName:  rec.ResolvedName,
		Country:       rec.Country,
		State:         rec.State,
		Lat:           rec.Lat,
		Lon:           rec.Lon,
		StartDate:     rec.StartDate.Format("2006-01-02"),
		EndDate:       rec.EndDate.Format("2006-01-02"),
		DailyTemps:    temps,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func (h *handlers) apiCreateRecord(c *fiber.Ctx) error {
	var req recordCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid start_date")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid end_date")
	}

	rec, err := h.svc.Create(c.Context(), req.Location, start, end)
	if err != nil {
		return asFiberError(err)
	}
	return c.JSON(toRecordResponse(rec))
}

func (h *handlers) apiListRecords(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	recs, err := h.svc.List(c.Context(), limit, offset)
	if err != nil {
		return asFiberError(err)
	}

	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecordResponse(rec))
	}
	return c.JSON(out)
}

func (h *handlers) apiGetRecord(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	rec, err := h.svc.Get(c.Context(), int64(id))
	if err != nil {
		return asFiberError(err)
	}
	return c.JSON(toRecordResponse(rec))
}

func (h *handlers) apiUpdateRecord(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	var req recordUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	params := records.UpdateParams{Location: req.Location}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid start_date")
		}
		params.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid end_date")
		}
		params.EndDate = &end
	}

	rec, err := h.svc.Update(c.Context(), int64(id), params)
	if err != nil {
		return asFiberError(err)
	}
	return c.JSON(toRecordResponse(rec))
}

func (h *handlers) apiDeleteRecord(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	if err := h.svc.Delete(c.Context(), int64(id)); err != nil {
		return asFiberError(err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *handlers) apiExportRecords(c *fiber.Ctx) error {
	format := c.Query("fmt", "json")
	if err := validate.Var(format, "oneof=json csv md"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported format; use json, csv or md")
	}

	recs, err := h.svc.List(c.Context(), 1000, 0)
	if err != nil {
		return asFiberError(err)
	}

	switch format {
	case "json":
		out, err := export.JSON(recs)
		if err != nil {
			return asFiberError(err)
		}
		c.Set(fiber.HeaderContentType, "application/json")
		return c.SendString(out)
	case "csv":
		out, err := export.CSV(recs)
		if err != nil {
			return asFiberError(err)
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		return c.SendString(out)
	default:
		c.Set(fiber.HeaderContentType, "text/markdown")
		return c.SendString(export.Markdown(recs))
	}
}

// -------------------------
// UI pages
// -------------------------

func (h *handlers) homePage(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{})
}

func (h *handlers) resultsPage(c *fiber.Ctx) error {
	q := c.Query("q")
	if err := validate.Var(q, "required,min=2,max=255"); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("results", fiber.Map{
			"Q":     q,
			"Error": "q must be between 2 and 255 characters",
		})
	}

	resolved, current, _, fiveDay, err := h.weatherLookup(c.Context(), q)
	if err != nil {
		return c.Status(statusFor(err)).Render("results", fiber.Map{
			"Q":     q,
			"Error": err.Error(),
		})
	}

	return c.Render("results", fiber.Map{
		"Q":          q,
		"Resolved":   resolved,
		"Current":    current,
		"FiveDay":    fiveDay,
		"YouTubeURL": youtubeSearchURL(resolved),
	})
}

func (h *handlers) recordsPage(c *fiber.Ctx) error {
	recs, err := h.svc.List(c.Context(), 100, 0)
	if err != nil {
		return asFiberError(err)
	}

	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecordResponse(rec))
	}
	return c.Render("records", fiber.Map{"Records": out})
}

func (h *handlers) recordDetailPage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	rec, err := h.svc.Get(c.Context(), int64(id))
	if err != nil {
		return asFiberError(err)
	}
	return c.Render("record_detail", fiber.Map{"Record": toRecordResponse(rec)})
}

func youtubeSearchURL(loc weather.ResolvedLocation) string {
	q := strings.TrimSpace(strings.Join([]string{loc.Name, loc.State, loc.Country}, " "))
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(q)
}

// Package almanac fetches daily zmanim, Shabbat times and holidays from
// the Hebcal REST API.
package almanac

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
)

type Client struct {
	baseURL   string
	geonameID string
	http      *http.Client
}

func NewClient(baseURL, geonameID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		geonameID: geonameID,
		http:      &http.Client{Timeout: timeout},
	}
}

type zmanimResponse struct {
	Date  string            `json:"date"`
	Times map[string]string `json:"times"`
}

// FetchDay returns the zmanim published for date.
func (c *Client) FetchDay(ctx context.Context, date time.Time) (model.DailyZmanim, error) {
	q := url.Values{}
	q.Set("cfg", "json")
	q.Set("geonameid", c.geonameID)
	q.Set("date", date.Format("2006-01-02"))

	var resp zmanimResponse
	if err := c.get(ctx, "/zmanim", q, &resp); err != nil {
		return model.DailyZmanim{}, err
	}

	return model.DailyZmanim{
		Date:           time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		AlotHaShachar:  clockOf(resp.Times["alotHaShachar"]),
		Sunrise:        clockOf(resp.Times["sunrise"]),
		Chatzot:        clockOf(resp.Times["chatzot"]),
		MinchaGedola:   clockOf(resp.Times["minchaGedola"]),
		PlagHaMincha:   clockOf(resp.Times["plagHaMincha"]),
		Sunset:         clockOf(resp.Times["sunset"]),
		BeinHaShmashos: clockOf(resp.Times["tzeit7083deg"]),
	}, nil
}

type calendarItem struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Subcat   string `json:"subcat"`
	Hebrew   string `json:"hebrew"`
}

type calendarResponse struct {
	Items []calendarItem `json:"items"`
}

// FetchShabbat returns candle lighting, havdalah and parasha for the
// Shabbat starting on friday.
func (c *Client) FetchShabbat(ctx context.Context, friday time.Time) (model.ShabbatTimes, error) {
	q := url.Values{}
	q.Set("cfg", "json")
	q.Set("geonameid", c.geonameID)
	q.Set("M", "on")
	q.Set("gy", strconv.Itoa(friday.Year()))
	q.Set("gm", strconv.Itoa(int(friday.Month())))
	q.Set("gd", strconv.Itoa(friday.Day()))

	var resp calendarResponse
	if err := c.get(ctx, "/shabbat", q, &resp); err != nil {
		return model.ShabbatTimes{}, err
	}

	out := model.ShabbatTimes{
		Friday: time.Date(friday.Year(), friday.Month(), friday.Day(), 0, 0, 0, 0, time.UTC),
	}
	for _, item := range resp.Items {
		switch item.Category {
		case "candles":
			// a Yom Tov eve can also light candles; keep the Friday one
			if out.CandleLighting == "" || strings.HasPrefix(item.Date, out.Friday.Format("2006-01-02")) {
				out.CandleLighting = clockOf(item.Date)
			}
		case "havdalah":
			out.Havdalah = clockOf(item.Date)
		case "parashat":
			out.Parasha = strings.TrimPrefix(item.Title, "Parashat ")
		}
	}
	return out, nil
}

// FetchHolidays returns the holidays and Rosh Chodesh days of a Gregorian year.
func (c *Client) FetchHolidays(ctx context.Context, year int) ([]model.Holiday, error) {
	q := url.Values{}
	q.Set("cfg", "json")
	q.Set("v", "1")
	q.Set("maj", "on")
	q.Set("min", "on")
	q.Set("mod", "on")
	q.Set("nx", "on")
	q.Set("year", strconv.Itoa(year))

	var resp calendarResponse
	if err := c.get(ctx, "/hebcal", q, &resp); err != nil {
		return nil, err
	}

	out := make([]model.Holiday, 0, len(resp.Items))
	for _, item := range resp.Items {
		category := holidayCategory(item)
		if category == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", item.Date[:min(len(item.Date), 10)])
		if err != nil {
			log.Warn().Str("title", item.Title).Str("date", item.Date).Msg("skipping holiday with unparseable date")
			continue
		}
		out = append(out, model.Holiday{
			Date:     d,
			Title:    item.Title,
			Hebrew:   item.Hebrew,
			Category: category,
		})
	}
	return out, nil
}

func holidayCategory(item calendarItem) string {
	switch item.Category {
	case "roshchodesh":
		return model.HolidayRoshChodesh
	case "holiday":
		switch item.Subcat {
		case "major":
			return model.HolidayMajor
		case "fast":
			return model.HolidayFast
		case "modern":
			return model.HolidayModern
		default:
			return model.HolidayMinor
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build almanac request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("almanac %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("almanac %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("almanac %s: decode: %w", path, err)
	}
	return nil
}

// clockOf reduces an ISO-8601 timestamp to its local "HH:MM".
// Unparseable values become empty, i.e. not published.
func clockOf(value string) string {
	if value == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Debug().Str("value", value).Msg("almanac time not RFC3339")
		return ""
	}
	return t.Format("15:04")
}

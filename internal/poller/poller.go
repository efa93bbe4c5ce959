// Package poller keeps the store's almanac data current by pulling from the
// almanac service on an interval.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
)

// Almanac is implemented by *almanac.Client.
type Almanac interface {
	FetchDay(ctx context.Context, date time.Time) (model.DailyZmanim, error)
	FetchShabbat(ctx context.Context, friday time.Time) (model.ShabbatTimes, error)
	FetchHolidays(ctx context.Context, year int) ([]model.Holiday, error)
}

// Sink is the write side of the store.
type Sink interface {
	UpsertDailyZmanim(z model.DailyZmanim) error
	UpsertShabbatTimes(s model.ShabbatTimes) error
	UpsertHoliday(h model.Holiday) error
}

// Announcer is implemented by *prayers.Service.
type Announcer interface {
	Today() time.Time
	InvalidateRange(ctx context.Context, from, to time.Time)
	Announce(ctx context.Context, date time.Time) error
}

type Poller struct {
	almanac   Almanac
	sink      Sink
	schedule  Announcer
	interval  time.Duration
	daysAhead int

	// years whose holidays are already stored
	holidayYears map[int]bool
}

func New(almanac Almanac, sink Sink, schedule Announcer, interval time.Duration, daysAhead int) *Poller {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if daysAhead < 7 {
		daysAhead = 7
	}
	return &Poller{
		almanac:      almanac,
		sink:         sink,
		schedule:     schedule,
		interval:     interval,
		daysAhead:    daysAhead,
		holidayYears: map[int]bool{},
	}
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", p.interval).Int("days_ahead", p.daysAhead).Msg("almanac poller started")
	p.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("almanac poller stopped")
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce fetches the coming days, the coming Shabbat and the holiday
// calendar of each year the window touches, once per year. Failures are
// logged and skipped so one bad day does not block the rest.
func (p *Poller) RunOnce(ctx context.Context) {
	today := p.schedule.Today()
	stored := 0

	// start from Sunday so the whole current week is known
	start := prayers.WeekStart(today)
	end := today.AddDate(0, 0, p.daysAhead)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if ctx.Err() != nil {
			return
		}
		z, err := p.almanac.FetchDay(ctx, d)
		if err != nil {
			log.Warn().Err(err).Str("date", prayers.FormatDate(d)).Msg("could not fetch zmanim")
			continue
		}
		if err := p.sink.UpsertDailyZmanim(z); err != nil {
			continue
		}
		stored++
	}

	friday := prayers.ShabbatFriday(today)
	if st, err := p.almanac.FetchShabbat(ctx, friday); err != nil {
		log.Warn().Err(err).Str("friday", prayers.FormatDate(friday)).Msg("could not fetch shabbat times")
	} else if err := p.sink.UpsertShabbatTimes(st); err == nil {
		stored++
	}

	for year := start.Year(); year <= end.Year(); year++ {
		if !p.holidayYears[year] {
			p.refreshHolidays(ctx, year)
		}
	}

	if stored == 0 {
		log.Warn().Msg("almanac refresh stored nothing, keeping previous data")
		return
	}
	log.Info().Int("rows", stored).Msg("almanac refreshed")

	p.schedule.InvalidateRange(ctx, start, end)
	if err := p.schedule.Announce(ctx, today); err != nil {
		log.Error().Err(err).Msg("could not push refreshed prayer times")
	}
}

func (p *Poller) refreshHolidays(ctx context.Context, year int) {
	holidays, err := p.almanac.FetchHolidays(ctx, year)
	if err != nil {
		log.Warn().Err(err).Int("year", year).Msg("could not fetch holidays")
		return
	}
	for _, h := range holidays {
		if err := p.sink.UpsertHoliday(h); err != nil {
			return
		}
	}
	p.holidayYears[year] = true
	log.Info().Int("year", year).Int("count", len(holidays)).Msg("holiday calendar stored")
}

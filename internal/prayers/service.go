// Package prayers assembles the synagogue's displayed schedule: almanac
// zmanim from the store, derived communal prayer times, admin overrides
// and placeholder times when nothing else is known.
package prayers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/model"
	"github.com/Nixie-Tech-LLC/minyan/internal/zmanim"
)

// Where a displayed time came from.
const (
	SourceComputed = "computed"
	SourceOverride = "override"
	SourceFallback = "fallback"
)

// Placeholder weekday times shown when the week has no almanac data.
var (
	FallbackMincha = zmanim.NewClock(18, 45)
	FallbackArvit  = zmanim.NewClock(19, 30)
)

// Source is the read side of the store the service needs.
type Source interface {
	GetDailyZmanim(date time.Time) (model.DailyZmanim, error)
	ListDailyZmanim(from, to time.Time) ([]model.DailyZmanim, error)
	GetShabbatTimes(friday time.Time) (model.ShabbatTimes, error)
	ListHolidays(from, to time.Time) ([]model.Holiday, error)
	ListPrayerOverrides(weekStart time.Time) ([]model.PrayerOverride, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any)
	Delete(ctx context.Context, keys ...string)
}

// Publisher pushes a refreshed schedule to display boards.
type Publisher interface {
	PublishPrayerTimes(ctx context.Context, board Board) error
}

type Service struct {
	store     Source
	cache     Cache
	publisher Publisher
	loc       *time.Location
	now       func() time.Time
}

// NewService builds a Service. cache may be nil.
func NewService(store Source, cache Cache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, cache: cache, loc: loc, now: time.Now}
}

// WithPublisher makes Announce push schedules through p.
func (s *Service) WithPublisher(p Publisher) *Service {
	s.publisher = p
	return s
}

type PrayerTime struct {
	Time   zmanim.Clock `json:"time"`
	Source string       `json:"source"`
	Note   *string      `json:"note,omitempty"`
}

type WeekSchedule struct {
	WeekStart string              `json:"week_start"`
	Mincha    PrayerTime          `json:"mincha"`
	Arvit     PrayerTime          `json:"arvit"`
	Days      []model.DailyZmanim `json:"days"`
}

type ShabbatSchedule struct {
	Friday         string     `json:"friday"`
	Parasha        string     `json:"parasha"`
	CandleLighting string     `json:"candle_lighting"`
	Havdalah       string     `json:"havdalah"`
	Kabalat        PrayerTime `json:"kabalat"`
	Mincha         PrayerTime `json:"mincha"`
}

type DaySchedule struct {
	Date        string             `json:"date"`
	Zmanim      *model.DailyZmanim `json:"zmanim"`
	Holidays    []model.Holiday    `json:"holidays"`
	RoshChodesh bool               `json:"rosh_chodesh"`
}

// Board is everything a display screen shows for one date.
type Board struct {
	Day     DaySchedule     `json:"day"`
	Week    WeekSchedule    `json:"week"`
	Shabbat ShabbatSchedule `json:"shabbat"`
}

// Today returns the current calendar date in the synagogue's time zone.
func (s *Service) Today() time.Time {
	return CivilDate(s.now().In(s.loc))
}

// Week returns the Sunday-Thursday Mincha and Arvit for the week containing date.
func (s *Service) Week(ctx context.Context, date time.Time) (WeekSchedule, error) {
	return s.week(ctx, date, true)
}

// Shabbat returns the times of the Shabbat on or after date. On a
// Saturday that is the current Shabbat.
func (s *Service) Shabbat(ctx context.Context, date time.Time) (ShabbatSchedule, error) {
	return s.shabbat(ctx, date, true)
}

// Day returns the zmanim and holidays of a single date.
func (s *Service) Day(ctx context.Context, date time.Time) (DaySchedule, error) {
	date = CivilDate(date)
	out := DaySchedule{Date: FormatDate(date), Holidays: []model.Holiday{}}

	z, err := s.store.GetDailyZmanim(date)
	switch {
	case err == nil:
		out.Zmanim = &z
	case errors.Is(err, db.ErrNotFound):
	default:
		return DaySchedule{}, err
	}

	holidays, err := s.store.ListHolidays(date, date)
	if err != nil {
		return DaySchedule{}, err
	}
	out.Holidays = holidays
	for _, h := range holidays {
		if h.Category == model.HolidayRoshChodesh {
			out.RoshChodesh = true
		}
	}
	return out, nil
}

// Board gathers the day, week and Shabbat for date.
func (s *Service) Board(ctx context.Context, date time.Time) (Board, error) {
	return s.board(ctx, date, true)
}

// Simulate is Board computed straight from the store, for previewing
// arbitrary dates without touching the cache.
func (s *Service) Simulate(ctx context.Context, date time.Time) (Board, error) {
	return s.board(ctx, date, false)
}

func (s *Service) board(ctx context.Context, date time.Time, cached bool) (Board, error) {
	day, err := s.Day(ctx, date)
	if err != nil {
		return Board{}, err
	}
	week, err := s.week(ctx, date, cached)
	if err != nil {
		return Board{}, err
	}
	shabbat, err := s.shabbat(ctx, date, cached)
	if err != nil {
		return Board{}, err
	}
	return Board{Day: day, Week: week, Shabbat: shabbat}, nil
}

// Invalidate drops cached schedules of the week containing date.
func (s *Service) Invalidate(ctx context.Context, date time.Time) {
	s.InvalidateRange(ctx, date, date)
}

// InvalidateRange drops cached schedules of every week touching [from, to].
func (s *Service) InvalidateRange(ctx context.Context, from, to time.Time) {
	if s.cache == nil {
		return
	}
	var keys []string
	for start := WeekStart(from); !start.After(CivilDate(to)); start = start.AddDate(0, 0, 7) {
		keys = append(keys, weekKey(start), shabbatKey(start.AddDate(0, 0, 5)))
	}
	s.cache.Delete(ctx, keys...)
}

// Announce invalidates the week containing date and pushes today's board
// to the displays.
func (s *Service) Announce(ctx context.Context, date time.Time) error {
	s.Invalidate(ctx, date)
	if s.publisher == nil {
		return nil
	}
	board, err := s.Board(ctx, s.Today())
	if err != nil {
		return err
	}
	return s.publisher.PublishPrayerTimes(ctx, board)
}

func (s *Service) week(ctx context.Context, date time.Time, cached bool) (WeekSchedule, error) {
	start := WeekStart(date)
	key := weekKey(start)

	var out WeekSchedule
	if cached && s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	degraded := false
	days, err := s.store.ListDailyZmanim(start, start.AddDate(0, 0, 4))
	if err != nil {
		log.Error().Err(err).Str("week_start", FormatDate(start)).Msg("could not load week zmanim, using fallback times")
		days = []model.DailyZmanim{}
		degraded = true
	}

	week := make([]zmanim.DailyTimes, 0, len(days))
	for _, d := range days {
		week = append(week, zmanim.DailyTimes{Date: d.Date, Sunset: d.Sunset, BeinHaShmashos: d.BeinHaShmashos})
	}
	derived := zmanim.Weekly(week)

	overrides, ok := s.overrides(start)
	degraded = degraded || !ok

	out = WeekSchedule{
		WeekStart: FormatDate(start),
		Mincha:    resolve(overrides[model.PrayerMincha], derived.Mincha, FallbackMincha),
		Arvit:     resolve(overrides[model.PrayerArvit], derived.Arvit, FallbackArvit),
		Days:      days,
	}
	// placeholders are not cached so the almanac data shows up once it arrives
	if cached && !degraded && out.Mincha.Source != SourceFallback && out.Arvit.Source != SourceFallback {
		s.cacheSet(ctx, key, out)
	}
	return out, nil
}

func (s *Service) shabbat(ctx context.Context, date time.Time, cached bool) (ShabbatSchedule, error) {
	friday := ShabbatFriday(date)
	key := shabbatKey(friday)

	var out ShabbatSchedule
	if cached && s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	degraded := false
	out = ShabbatSchedule{Friday: FormatDate(friday)}

	var sunset string
	switch z, err := s.store.GetDailyZmanim(friday); {
	case err == nil:
		sunset = z.Sunset
	case !errors.Is(err, db.ErrNotFound):
		log.Error().Err(err).Str("friday", FormatDate(friday)).Msg("could not load friday zmanim")
		degraded = true
	}

	switch st, err := s.store.GetShabbatTimes(friday); {
	case err == nil:
		out.Parasha = st.Parasha
		out.CandleLighting = st.CandleLighting
		out.Havdalah = st.Havdalah
	case !errors.Is(err, db.ErrNotFound):
		log.Error().Err(err).Str("friday", FormatDate(friday)).Msg("could not load shabbat times")
		degraded = true
	}

	overrides, ok := s.overrides(WeekStart(friday))
	degraded = degraded || !ok

	out.Kabalat = resolve(overrides[model.PrayerKabalat], derive(zmanim.ShabbatKabalatTime, sunset), zmanim.Fallback)
	out.Mincha = resolve(overrides[model.PrayerShabbatMincha], derive(zmanim.ShabbatMinchaTime, out.Havdalah), zmanim.Fallback)

	if cached && !degraded && out.Kabalat.Source != SourceFallback && out.Mincha.Source != SourceFallback {
		s.cacheSet(ctx, key, out)
	}
	return out, nil
}

// derive applies a Shabbat rule, treating an empty or malformed stored
// input as missing rather than substituting the rule's own fallback.
func derive(rule func(string) (zmanim.Clock, error), input string) *zmanim.Clock {
	if input == "" {
		return nil
	}
	c, err := rule(input)
	if err != nil {
		log.Warn().Err(err).Str("input", input).Msg("ignoring malformed almanac time")
		return nil
	}
	return &c
}

// overrides returns the admin overrides of a week by prayer. The bool is
// false when they could not be loaded.
func (s *Service) overrides(weekStart time.Time) (map[string]model.PrayerOverride, bool) {
	list, err := s.store.ListPrayerOverrides(weekStart)
	if err != nil {
		log.Error().Err(err).Str("week_start", FormatDate(weekStart)).Msg("could not load prayer overrides")
		return map[string]model.PrayerOverride{}, false
	}
	out := make(map[string]model.PrayerOverride, len(list))
	for _, o := range list {
		out[o.Prayer] = o
	}
	return out, true
}

func resolve(override model.PrayerOverride, derived *zmanim.Clock, fallback zmanim.Clock) PrayerTime {
	if override.Time != "" {
		c, err := zmanim.ParseClock(override.Time)
		if err == nil {
			return PrayerTime{Time: c, Source: SourceOverride, Note: override.Note}
		}
		log.Warn().Err(err).Str("prayer", override.Prayer).Msg("ignoring malformed override")
	}
	if derived != nil {
		return PrayerTime{Time: *derived, Source: SourceComputed}
	}
	return PrayerTime{Time: fallback, Source: SourceFallback}
}

func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, out)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache != nil {
		s.cache.SetJSON(ctx, key, value)
	}
}

func weekKey(start time.Time) string     { return "week:" + FormatDate(start) }
func shabbatKey(friday time.Time) string { return "shabbat:" + FormatDate(friday) }

package poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/model"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
)

type fakeAlmanac struct {
	failDay      string
	holidayCalls int
	years        []int
}

func (f *fakeAlmanac) FetchDay(_ context.Context, date time.Time) (model.DailyZmanim, error) {
	if prayers.FormatDate(date) == f.failDay {
		return model.DailyZmanim{}, errors.New("upstream timeout")
	}
	return model.DailyZmanim{Date: date, Sunset: "19:10"}, nil
}

func (f *fakeAlmanac) FetchShabbat(_ context.Context, friday time.Time) (model.ShabbatTimes, error) {
	return model.ShabbatTimes{Friday: friday, Parasha: "Emor", Havdalah: "20:15"}, nil
}

func (f *fakeAlmanac) FetchHolidays(_ context.Context, year int) ([]model.Holiday, error) {
	f.holidayCalls++
	f.years = append(f.years, year)
	return []model.Holiday{
		{Date: time.Date(year, 1, 5, 0, 0, 0, 0, time.UTC), Title: "Rosh Chodesh Sh'vat", Category: model.HolidayRoshChodesh},
		{Date: time.Date(year, 5, 14, 0, 0, 0, 0, time.UTC), Title: "Pesach Sheni", Category: model.HolidayMinor},
	}, nil
}

type announcer struct {
	today       time.Time
	announced   []time.Time
	invalidated [][2]time.Time
}

func (a *announcer) Today() time.Time { return a.today }

func (a *announcer) InvalidateRange(_ context.Context, from, to time.Time) {
	a.invalidated = append(a.invalidated, [2]time.Time{from, to})
}

func (a *announcer) Announce(_ context.Context, date time.Time) error {
	a.announced = append(a.announced, date)
	return nil
}

func TestRunOnce(t *testing.T) {
	store := db.NewMemStore()
	src := &fakeAlmanac{failDay: "2030-05-07"}
	ann := &announcer{today: time.Date(2030, 5, 8, 0, 0, 0, 0, time.UTC)}

	p := New(src, store, ann, time.Hour, 7)
	p.RunOnce(context.Background())

	days, err := store.ListDailyZmanim(time.Date(2030, 5, 5, 0, 0, 0, 0, time.UTC), time.Date(2030, 5, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// sunday 5th through the 15th, minus the failed day
	assert.Len(t, days, 10)

	st, err := store.GetShabbatTimes(time.Date(2030, 5, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Emor", st.Parasha)

	holidays, err := store.ListHolidays(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, holidays, 2)
	assert.Len(t, ann.announced, 1)
	require.Len(t, ann.invalidated, 1)
	assert.Equal(t, [2]time.Time{
		time.Date(2030, 5, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 5, 15, 0, 0, 0, 0, time.UTC),
	}, ann.invalidated[0])

	p.RunOnce(context.Background())
	assert.Equal(t, 1, src.holidayCalls, "holidays are fetched once per year")
	assert.Len(t, ann.announced, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	ann := &announcer{today: time.Date(2030, 5, 8, 0, 0, 0, 0, time.UTC)}
	p := New(&fakeAlmanac{}, db.NewMemStore(), ann, time.Hour, 7)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestRunOnceAcrossNewYear(t *testing.T) {
	store := db.NewMemStore()
	src := &fakeAlmanac{}
	ann := &announcer{today: time.Date(2030, 12, 26, 0, 0, 0, 0, time.UTC)}

	p := New(src, store, ann, time.Hour, 14)
	p.RunOnce(context.Background())

	assert.Equal(t, []int{2030, 2031}, src.years)
	holidays, err := store.ListHolidays(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2031, 1, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, model.HolidayRoshChodesh, holidays[0].Category)

	p.RunOnce(context.Background())
	assert.Equal(t, []int{2030, 2031}, src.years, "stored years are not fetched again")
}

type mapCache map[string][]byte

func (m mapCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (m mapCache) SetJSON(_ context.Context, key string, value any) {
	m[key], _ = json.Marshal(value)
}

func (m mapCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(m, k)
	}
}

// sunsetAlmanac publishes a sunset only for days on or after from.
type sunsetAlmanac struct {
	fakeAlmanac
	from time.Time
}

func (s *sunsetAlmanac) FetchDay(_ context.Context, date time.Time) (model.DailyZmanim, error) {
	if date.Before(s.from) {
		return model.DailyZmanim{Date: date}, nil
	}
	return model.DailyZmanim{Date: date, Sunset: "19:14"}, nil
}

// onDay pins the service's notion of today.
type onDay struct {
	*prayers.Service
	today time.Time
}

func (o onDay) Today() time.Time { return o.today }

func TestRunOnceRefreshesLaterWeeks(t *testing.T) {
	store := db.NewMemStore()
	cache := mapCache{}
	svc := prayers.NewService(store, cache, time.UTC)
	ctx := context.Background()
	nextWeek := time.Date(2030, 5, 13, 0, 0, 0, 0, time.UTC)

	// a computed week cached from older data must be dropped by the poll
	require.NoError(t, store.UpsertDailyZmanim(model.DailyZmanim{Date: nextWeek, Sunset: "19:40"}))
	before, err := svc.Week(ctx, nextWeek)
	require.NoError(t, err)
	assert.Equal(t, "19:25", before.Mincha.Time.String())
	require.Contains(t, cache, "week:2030-05-12")

	src := &sunsetAlmanac{from: nextWeek.AddDate(0, 0, -1)}
	p := New(src, store, onDay{Service: svc, today: time.Date(2030, 5, 8, 0, 0, 0, 0, time.UTC)}, time.Hour, 14)
	p.RunOnce(ctx)

	after, err := svc.Week(ctx, nextWeek)
	require.NoError(t, err)
	assert.Equal(t, prayers.SourceComputed, after.Mincha.Source)
	assert.Equal(t, "19:00", after.Mincha.Time.String())
}

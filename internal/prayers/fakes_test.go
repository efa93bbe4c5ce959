package prayers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/model"
)

type fakeStore struct {
	zmanim    map[string]model.DailyZmanim
	shabbat   map[string]model.ShabbatTimes
	holidays  []model.Holiday
	overrides map[string][]model.PrayerOverride
	err       error
	calls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		zmanim:    map[string]model.DailyZmanim{},
		shabbat:   map[string]model.ShabbatTimes{},
		overrides: map[string][]model.PrayerOverride{},
	}
}

func (f *fakeStore) addSunset(date, sunset, bein string) {
	d, _ := ParseDate(date)
	f.zmanim[date] = model.DailyZmanim{Date: d, Sunset: sunset, BeinHaShmashos: bein}
}

func (f *fakeStore) GetDailyZmanim(date time.Time) (model.DailyZmanim, error) {
	f.calls++
	if f.err != nil {
		return model.DailyZmanim{}, f.err
	}
	z, ok := f.zmanim[FormatDate(date)]
	if !ok {
		return model.DailyZmanim{}, db.ErrNotFound
	}
	return z, nil
}

func (f *fakeStore) ListDailyZmanim(from, to time.Time) ([]model.DailyZmanim, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := []model.DailyZmanim{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if z, ok := f.zmanim[FormatDate(d)]; ok {
			out = append(out, z)
		}
	}
	return out, nil
}

func (f *fakeStore) GetShabbatTimes(friday time.Time) (model.ShabbatTimes, error) {
	f.calls++
	if f.err != nil {
		return model.ShabbatTimes{}, f.err
	}
	st, ok := f.shabbat[FormatDate(friday)]
	if !ok {
		return model.ShabbatTimes{}, db.ErrNotFound
	}
	return st, nil
}

func (f *fakeStore) ListHolidays(from, to time.Time) ([]model.Holiday, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Holiday{}
	for _, h := range f.holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPrayerOverrides(weekStart time.Time) ([]model.PrayerOverride, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.overrides[FormatDate(weekStart)], nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (m *memCache) SetJSON(_ context.Context, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, _ := json.Marshal(value)
	m.data[key] = raw
}

func (m *memCache) Delete(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
}

type recordingPublisher struct {
	boards []Board
	err    error
}

func (r *recordingPublisher) PublishPrayerTimes(_ context.Context, b Board) error {
	r.boards = append(r.boards, b)
	return r.err
}

var errStoreDown = errors.New("store down")

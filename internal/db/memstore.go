package db

import (
	"sort"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
)

// MemStore keeps everything in process memory. It backs the demo mode
// (DATABASE_URL=memory://) and the HTTP tests.
type MemStore struct {
	mu        sync.RWMutex
	users     map[int]model.User
	zmanim    map[string]model.DailyZmanim
	shabbat   map[string]model.ShabbatTimes
	holidays  map[string]model.Holiday
	classes   map[int]model.Class
	overrides map[string]model.PrayerOverride
	nextUser  int
	nextClass int
	now       func() time.Time
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		users:     map[int]model.User{},
		zmanim:    map[string]model.DailyZmanim{},
		shabbat:   map[string]model.ShabbatTimes{},
		holidays:  map[string]model.Holiday{},
		classes:   map[int]model.Class{},
		overrides: map[string]model.PrayerOverride{},
		now:       time.Now,
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func within(d, from, to time.Time) bool {
	d = midnight(d)
	return !d.Before(midnight(from)) && !d.After(midnight(to))
}

func (m *MemStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return 0, ErrDuplicate
		}
	}
	m.nextUser++
	now := m.now()
	m.users[m.nextUser] = model.User{
		ID: m.nextUser, Email: email, HashedPassword: hashedPassword, Name: name,
		CreatedAt: now, UpdatedAt: now,
	}
	return m.nextUser, nil
}

func (m *MemStore) GetUserByEmail(email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) GetUserByID(id int) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemStore) UpsertDailyZmanim(z model.DailyZmanim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	z.Date = midnight(z.Date)
	z.UpdatedAt = m.now()
	m.zmanim[day(z.Date)] = z
	return nil
}

func (m *MemStore) GetDailyZmanim(date time.Time) (model.DailyZmanim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zmanim[day(date)]
	if !ok {
		return model.DailyZmanim{}, ErrNotFound
	}
	return z, nil
}

func (m *MemStore) ListDailyZmanim(from, to time.Time) ([]model.DailyZmanim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.DailyZmanim{}
	for _, z := range m.zmanim {
		if within(z.Date, from, to) {
			out = append(out, z)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemStore) UpsertShabbatTimes(st model.ShabbatTimes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st.Friday = midnight(st.Friday)
	st.UpdatedAt = m.now()
	m.shabbat[day(st.Friday)] = st
	return nil
}

func (m *MemStore) GetShabbatTimes(friday time.Time) (model.ShabbatTimes, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.shabbat[day(friday)]
	if !ok {
		return model.ShabbatTimes{}, ErrNotFound
	}
	return st, nil
}

func (m *MemStore) UpsertHoliday(h model.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.Date = midnight(h.Date)
	m.holidays[day(h.Date)+"|"+h.Title] = h
	return nil
}

func (m *MemStore) ListHolidays(from, to time.Time) ([]model.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Holiday{}
	for _, h := range m.holidays {
		if within(h.Date, from, to) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (m *MemStore) CreateClass(c model.Class) (model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextClass++
	c.ID = m.nextClass
	c.FlyerURL = nil
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	m.classes[c.ID] = c
	return c, nil
}

func (m *MemStore) GetClass(id int) (model.Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[id]
	if !ok {
		return model.Class{}, ErrNotFound
	}
	return c, nil
}

func (m *MemStore) ListClasses() ([]model.Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Class, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Weekday != b.Weekday {
			return a.Weekday < b.Weekday
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (m *MemStore) UpdateClass(id int, title, teacher *string, weekday *int, startTime, location *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return ErrNotFound
	}
	if title != nil {
		c.Title = *title
	}
	if teacher != nil {
		c.Teacher = *teacher
	}
	if weekday != nil {
		c.Weekday = *weekday
	}
	if startTime != nil {
		c.StartTime = *startTime
	}
	if location != nil {
		c.Location = location
	}
	c.UpdatedAt = m.now()
	m.classes[id] = c
	return nil
}

func (m *MemStore) SetClassFlyer(id int, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return ErrNotFound
	}
	c.FlyerURL = &url
	c.UpdatedAt = m.now()
	m.classes[id] = c
	return nil
}

func (m *MemStore) DeleteClass(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[id]; !ok {
		return ErrNotFound
	}
	delete(m.classes, id)
	return nil
}

func overrideKey(weekStart time.Time, prayer string) string {
	return day(weekStart) + "|" + prayer
}

func (m *MemStore) SetPrayerOverride(weekStart time.Time, prayer, at string, note *string, updatedBy int) (model.PrayerOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := model.PrayerOverride{
		WeekStart: midnight(weekStart),
		Prayer:    prayer,
		Time:      at,
		Note:      note,
		UpdatedBy: updatedBy,
		UpdatedAt: m.now(),
	}
	m.overrides[overrideKey(weekStart, prayer)] = o
	return o, nil
}

func (m *MemStore) ListPrayerOverrides(weekStart time.Time) ([]model.PrayerOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.PrayerOverride{}
	for _, o := range m.overrides {
		if day(o.WeekStart) == day(weekStart) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prayer < out[j].Prayer })
	return out, nil
}

func (m *MemStore) DeletePrayerOverride(weekStart time.Time, prayer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := overrideKey(weekStart, prayer)
	if _, ok := m.overrides[key]; !ok {
		return ErrNotFound
	}
	delete(m.overrides, key)
	return nil
}

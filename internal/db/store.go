// exposes a Store interface that is passed to services and API modules
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
)

type Store interface {
	// admin functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)

	// almanac data
	UpsertDailyZmanim(z model.DailyZmanim) error
	GetDailyZmanim(date time.Time) (model.DailyZmanim, error)
	ListDailyZmanim(from, to time.Time) ([]model.DailyZmanim, error)
	UpsertShabbatTimes(s model.ShabbatTimes) error
	GetShabbatTimes(friday time.Time) (model.ShabbatTimes, error)
	UpsertHoliday(h model.Holiday) error
	ListHolidays(from, to time.Time) ([]model.Holiday, error)

	// class schedule
	CreateClass(c model.Class) (model.Class, error)
	GetClass(id int) (model.Class, error)
	ListClasses() ([]model.Class, error)
	UpdateClass(id int, title, teacher *string, weekday *int, startTime, location *string) error
	SetClassFlyer(id int, url string) error
	DeleteClass(id int) error

	// prayer time overrides
	SetPrayerOverride(weekStart time.Time, prayer, at string, note *string, updatedBy int) (model.PrayerOverride, error)
	ListPrayerOverrides(weekStart time.Time) ([]model.PrayerOverride, error)
	DeletePrayerOverride(weekStart time.Time, prayer string) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}

const dateLayout = "2006-01-02"

// day strips the clock so date columns compare by calendar day.
func day(t time.Time) string {
	return t.Format(dateLayout)
}

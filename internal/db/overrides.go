package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
)

func (s *pgStore) SetPrayerOverride(weekStart time.Time, prayer, at string, note *string, updatedBy int) (model.PrayerOverride, error) {
	var o model.PrayerOverride
	err := s.db.Get(&o, `
	INSERT INTO prayer_overrides (week_start, prayer, time, note, updated_by, updated_at)
	VALUES ($1,$2,$3,$4,$5,now())
	ON CONFLICT (week_start, prayer) DO UPDATE SET
	  time       = EXCLUDED.time,
	  note       = EXCLUDED.note,
	  updated_by = EXCLUDED.updated_by,
	  updated_at = now()
	RETURNING week_start, prayer, time, note, updated_by, updated_at;`,
		day(weekStart), prayer, at, note, updatedBy)
	if err != nil {
		log.Error().Err(err).Str("week_start", day(weekStart)).Str("prayer", prayer).Msg("SetPrayerOverride failed")
		return model.PrayerOverride{}, err
	}
	return o, nil
}

func (s *pgStore) ListPrayerOverrides(weekStart time.Time) ([]model.PrayerOverride, error) {
	out := []model.PrayerOverride{}
	err := s.db.Select(&out, `
	SELECT week_start, prayer, time, note, updated_by, updated_at
	  FROM prayer_overrides
	 WHERE week_start = $1
	 ORDER BY prayer;`, day(weekStart))
	if err != nil {
		log.Error().Err(err).Str("week_start", day(weekStart)).Msg("ListPrayerOverrides failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) DeletePrayerOverride(weekStart time.Time, prayer string) error {
	res, err := s.db.Exec(`DELETE FROM prayer_overrides WHERE week_start = $1 AND prayer = $2;`, day(weekStart), prayer)
	if err != nil {
		log.Error().Err(err).Str("week_start", day(weekStart)).Str("prayer", prayer).Msg("DeletePrayerOverride failed")
		return err
	}
	return expectOneRow(res.RowsAffected())
}

package db

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
)

func (s *pgStore) UpsertDailyZmanim(z model.DailyZmanim) error {
	_, err := s.db.Exec(`
	INSERT INTO daily_zmanim
	  (date, alot_hashachar, sunrise, chatzot, mincha_gedola, plag_hamincha, sunset, bein_hashmashos, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
	ON CONFLICT (date) DO UPDATE SET
	  alot_hashachar  = EXCLUDED.alot_hashachar,
	  sunrise         = EXCLUDED.sunrise,
	  chatzot         = EXCLUDED.chatzot,
	  mincha_gedola   = EXCLUDED.mincha_gedola,
	  plag_hamincha   = EXCLUDED.plag_hamincha,
	  sunset          = EXCLUDED.sunset,
	  bein_hashmashos = EXCLUDED.bein_hashmashos,
	  updated_at      = now();`,
		day(z.Date), z.AlotHaShachar, z.Sunrise, z.Chatzot, z.MinchaGedola, z.PlagHaMincha, z.Sunset, z.BeinHaShmashos)
	if err != nil {
		log.Error().Err(err).Str("date", day(z.Date)).Msg("UpsertDailyZmanim failed")
	}
	return err
}

const zmanimColumns = `date, alot_hashachar, sunrise, chatzot, mincha_gedola, plag_hamincha, sunset, bein_hashmashos, updated_at`

func (s *pgStore) GetDailyZmanim(date time.Time) (model.DailyZmanim, error) {
	var z model.DailyZmanim
	err := s.db.Get(&z, `SELECT `+zmanimColumns+` FROM daily_zmanim WHERE date = $1;`, day(date))
	if err != nil {
		err = notFound(err)
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("date", day(date)).Msg("GetDailyZmanim failed")
		}
		return model.DailyZmanim{}, err
	}
	return z, nil
}

// ListDailyZmanim returns the rows in [from, to], both days inclusive.
func (s *pgStore) ListDailyZmanim(from, to time.Time) ([]model.DailyZmanim, error) {
	out := []model.DailyZmanim{}
	err := s.db.Select(&out, `
	SELECT `+zmanimColumns+`
	  FROM daily_zmanim
	 WHERE date BETWEEN $1 AND $2
	 ORDER BY date;`, day(from), day(to))
	if err != nil {
		log.Error().Err(err).Str("from", day(from)).Str("to", day(to)).Msg("ListDailyZmanim failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpsertShabbatTimes(st model.ShabbatTimes) error {
	_, err := s.db.Exec(`
	INSERT INTO shabbat_times (friday, parasha, candle_lighting, havdalah, updated_at)
	VALUES ($1,$2,$3,$4,now())
	ON CONFLICT (friday) DO UPDATE SET
	  parasha         = EXCLUDED.parasha,
	  candle_lighting = EXCLUDED.candle_lighting,
	  havdalah        = EXCLUDED.havdalah,
	  updated_at      = now();`,
		day(st.Friday), st.Parasha, st.CandleLighting, st.Havdalah)
	if err != nil {
		log.Error().Err(err).Str("friday", day(st.Friday)).Msg("UpsertShabbatTimes failed")
	}
	return err
}

func (s *pgStore) GetShabbatTimes(friday time.Time) (model.ShabbatTimes, error) {
	var st model.ShabbatTimes
	err := s.db.Get(&st, `
	SELECT friday, parasha, candle_lighting, havdalah, updated_at
	  FROM shabbat_times
	 WHERE friday = $1;`, day(friday))
	if err != nil {
		err = notFound(err)
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("friday", day(friday)).Msg("GetShabbatTimes failed")
		}
		return model.ShabbatTimes{}, err
	}
	return st, nil
}

func (s *pgStore) UpsertHoliday(h model.Holiday) error {
	_, err := s.db.Exec(`
	INSERT INTO holidays (date, title, hebrew, category)
	VALUES ($1,$2,$3,$4)
	ON CONFLICT (date, title) DO UPDATE SET
	  hebrew   = EXCLUDED.hebrew,
	  category = EXCLUDED.category;`,
		day(h.Date), h.Title, h.Hebrew, h.Category)
	if err != nil {
		log.Error().Err(err).Str("title", h.Title).Msg("UpsertHoliday failed")
	}
	return err
}

func (s *pgStore) ListHolidays(from, to time.Time) ([]model.Holiday, error) {
	out := []model.Holiday{}
	err := s.db.Select(&out, `
	SELECT date, title, hebrew, category
	  FROM holidays
	 WHERE date BETWEEN $1 AND $2
	 ORDER BY date, title;`, day(from), day(to))
	if err != nil {
		log.Error().Err(err).Msg("ListHolidays failed")
		return nil, err
	}
	return out, nil
}

package db

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
)

const classColumns = `id, title, teacher, weekday, start_time, location, flyer_url, created_by, created_at, updated_at`

func (s *pgStore) CreateClass(c model.Class) (model.Class, error) {
	var out model.Class
	err := s.db.Get(&out, `
	INSERT INTO classes (title, teacher, weekday, start_time, location, created_by, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,now(),now())
	RETURNING `+classColumns+`;`,
		c.Title, c.Teacher, c.Weekday, c.StartTime, c.Location, c.CreatedBy)
	if err != nil {
		log.Error().Err(err).Msg("CreateClass failed")
		return model.Class{}, err
	}
	return out, nil
}

func (s *pgStore) GetClass(id int) (model.Class, error) {
	var c model.Class
	if err := s.db.Get(&c, `SELECT `+classColumns+` FROM classes WHERE id = $1;`, id); err != nil {
		log.Error().Err(err).Int("class_id", id).Msg("GetClass failed")
		return model.Class{}, notFound(err)
	}
	return c, nil
}

// ListClasses orders by weekday then start time, the way the schedule is displayed.
func (s *pgStore) ListClasses() ([]model.Class, error) {
	out := []model.Class{}
	if err := s.db.Select(&out, `SELECT `+classColumns+` FROM classes ORDER BY weekday, start_time, id;`); err != nil {
		log.Error().Err(err).Msg("ListClasses failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateClass(id int, title, teacher *string, weekday *int, startTime, location *string) error {
	res, err := s.db.Exec(`
		UPDATE classes
		SET title = COALESCE($2, title),
		teacher = COALESCE($3, teacher),
		weekday = COALESCE($4, weekday),
		start_time = COALESCE($5, start_time),
		location = COALESCE($6, location),
		updated_at = now()
		WHERE id = $1
		`, id, title, teacher, weekday, startTime, location)
	if err != nil {
		log.Error().Err(err).Int("class_id", id).Msg("UpdateClass failed")
		return err
	}
	return expectOneRow(res.RowsAffected())
}

func (s *pgStore) SetClassFlyer(id int, url string) error {
	res, err := s.db.Exec(`UPDATE classes SET flyer_url = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		log.Error().Err(err).Int("class_id", id).Msg("SetClassFlyer failed")
		return err
	}
	return expectOneRow(res.RowsAffected())
}

func (s *pgStore) DeleteClass(id int) error {
	res, err := s.db.Exec(`DELETE FROM classes WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("class_id", id).Msg("DeleteClass failed")
		return err
	}
	return expectOneRow(res.RowsAffected())
}

func expectOneRow(rows int64, err error) error {
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	if rows > 1 {
		return errors.New("more than one row affected")
	}
	return nil
}

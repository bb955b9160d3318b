package db

import (
	"database/sql"
	"iter"
	"time"

	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/dailylog"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/profile"
)

// LoadLog returns the user's log entries grouped by date, in position order.
func LoadLog(db *sql.DB, username string) (map[calendar.Date][]dailylog.Entry, error) {
	rows, err := db.Query(`
		SELECT id, day, food_id, servings, created_at
		FROM log_entries
		WHERE username = ?
		ORDER BY day, position
	`, username)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	days := make(map[calendar.Date][]dailylog.Entry)
	for rows.Next() {
		var (
			e         dailylog.Entry
			day       string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &day, &e.FoodID, &e.Servings, &createdAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		d, err := calendar.Parse(day)
		if err != nil {
			return nil, errors.NewInternalConsistency("stored log date " + day + " is invalid")
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		days[d] = append(days[d], e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return days, nil
}

// ReplaceLog overwrites the user's stored log with the contents of log.
func ReplaceLog(db *sql.DB, username string, log *dailylog.Log) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM log_entries WHERE username = ?`, username); err != nil {
		return errors.NewInternal(err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO log_entries (id, username, day, position, food_id, servings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, d := range log.Dates() {
		for pos, e := range log.Entries(d) {
			_, err := stmt.Exec(e.ID, username, d.String(), pos, e.FoodID, e.Servings, e.CreatedAt.UnixNano())
			if err != nil {
				return errors.NewInternal(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LoadProfiles returns the user's explicit profile records in date order.
func LoadProfiles(db *sql.DB, username string) ([]profile.Profile, error) {
	rows, err := db.Query(`
		SELECT day, gender, height_cm, age, weight_kg, activity
		FROM profiles
		WHERE username = ?
		ORDER BY day
	`, username)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var records []profile.Profile
	for rows.Next() {
		var (
			p        profile.Profile
			day      string
			gender   string
			activity int
		)
		if err := rows.Scan(&day, &gender, &p.HeightCM, &p.Age, &p.WeightKG, &activity); err != nil {
			return nil, errors.NewInternal(err)
		}
		d, err := calendar.Parse(day)
		if err != nil {
			return nil, errors.NewInternalConsistency("stored profile date " + day + " is invalid")
		}
		p.Date = d
		p.Gender = profile.Gender(gender)
		p.Activity = profile.ActivityLevel(activity)
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return records, nil
}

// ReplaceProfiles overwrites the user's stored profile history.
func ReplaceProfiles(db *sql.DB, username string, records iter.Seq[profile.Profile]) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM profiles WHERE username = ?`, username); err != nil {
		return errors.NewInternal(err)
	}

	for p := range records {
		_, err := tx.Exec(`
			INSERT INTO profiles (username, day, gender, height_cm, age, weight_kg, activity)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, username, p.Date.String(), string(p.Gender), p.HeightCM, p.Age, p.WeightKG, int(p.Activity))
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/food"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InsertFood stores a new food after all foods already stored.
func InsertFood(db *sql.DB, f food.Food) error {
	return InsertFoods(db, []food.Food{f})
}

// InsertFoods stores foods in order within one transaction. Either all are
// stored or none.
func InsertFoods(db *sql.DB, foods []food.Food) error {
	if len(foods) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	for _, f := range foods {
		if err := insertFood(tx, f); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func insertFood(tx execer, f food.Food) error {
	var keywordsJSON sql.NullString
	if len(f.Keywords) > 0 {
		data, err := json.Marshal(f.Keywords)
		if err != nil {
			return errors.NewInternal(err)
		}
		keywordsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO foods (id, seq, name, kind, calories, keywords_json, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM foods), ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query, f.ID, f.Name, string(f.Kind), f.CaloriesPerServing, keywordsJSON, time.Now().Unix())
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateID(f.ID)
		}
		return errors.NewInternal(err)
	}

	for i, comp := range f.Components {
		_, err := tx.Exec(`
			INSERT INTO food_components (food_id, ord, component_id, servings)
			VALUES (?, ?, ?, ?)
		`, f.ID, i, comp.FoodID, comp.Servings)
		if err != nil {
			return errors.NewInternal(err)
		}
	}
	return nil
}

// LoadCatalog returns every stored food in insertion order.
func LoadCatalog(db *sql.DB) ([]food.Food, error) {
	rows, err := db.Query(`
		SELECT id, name, kind, calories, keywords_json
		FROM foods
		ORDER BY seq
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var foods []food.Food
	index := make(map[string]int)
	for rows.Next() {
		var (
			f            food.Food
			kind         string
			keywordsJSON sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.Name, &kind, &f.CaloriesPerServing, &keywordsJSON); err != nil {
			return nil, errors.NewInternal(err)
		}
		f.Kind = food.Kind(kind)
		if keywordsJSON.Valid && keywordsJSON.String != "" {
			if err := json.Unmarshal([]byte(keywordsJSON.String), &f.Keywords); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		index[f.ID] = len(foods)
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	compRows, err := db.Query(`
		SELECT food_id, component_id, servings
		FROM food_components
		ORDER BY food_id, ord
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer compRows.Close()

	for compRows.Next() {
		var (
			foodID string
			comp   food.Component
		)
		if err := compRows.Scan(&foodID, &comp.FoodID, &comp.Servings); err != nil {
			return nil, errors.NewInternal(err)
		}
		i, ok := index[foodID]
		if !ok {
			return nil, errors.NewInternalConsistency("component row for unknown food " + foodID)
		}
		foods[i].Components = append(foods[i].Components, comp)
	}
	if err := compRows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return foods, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

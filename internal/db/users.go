package db

import (
	"database/sql"
	"time"

	"github.com/hpungsan/yada/internal/errors"
)

// User is a registered user. There are no credentials.
type User struct {
	Name      string `json:"name"`
	Strategy  string `json:"strategy"`
	CreatedAt int64  `json:"created_at"`
}

// InsertUser registers a new user.
func InsertUser(db *sql.DB, u *User) error {
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	_, err := db.Exec(`INSERT INTO users (name, strategy, created_at) VALUES (?, ?, ?)`,
		u.Name, u.Strategy, u.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewUserExists(u.Name)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetUser returns the user named name.
func GetUser(db *sql.DB, name string) (*User, error) {
	var u User
	err := db.QueryRow(`SELECT name, strategy, created_at FROM users WHERE name = ?`, name).
		Scan(&u.Name, &u.Strategy, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by name.
func ListUsers(db *sql.DB) ([]User, error) {
	rows, err := db.Query(`SELECT name, strategy, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Name, &u.Strategy, &u.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return users, nil
}

// UpdateUserStrategy stores the user's calorie target strategy.
func UpdateUserStrategy(db *sql.DB, name, strategy string) error {
	result, err := db.Exec(`UPDATE users SET strategy = ? WHERE name = ?`, strategy, name)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(name)
	}
	return nil
}

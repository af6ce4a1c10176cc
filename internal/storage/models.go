package storage

import (
	"time"
)

// Setting names a value in the settings bucket.
type Setting string

const (
	SettingToken             Setting = "token"
	SettingLastProblem       Setting = "last_problem"
	SettingLanguage          Setting = "language"
	SettingStatementLanguage Setting = "statement_language"
)

// LastProblem is the problem whose statement was shown most recently.
type LastProblem struct {
	ID       uint64    `json:"id"`
	Name     string    `json:"name"`
	ViewedAt time.Time `json:"viewed_at"`
}

// Statement is a cached copy of a problem statement.
type Statement struct {
	ProblemID uint64    `json:"problem_id"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}

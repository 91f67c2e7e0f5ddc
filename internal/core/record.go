package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyType     = errors.New("empty workout type")
	ErrInvalidLevel  = errors.New("level out of range")
	ErrInvalidRegret = errors.New("invalid regret value")
	ErrEmptyText     = errors.New("empty text")
)

type (
	// Expense is a single dated spend record.
	Expense struct {
		ID          string `json:"id"`
		Date        string `json:"date"`
		Amount      Amount `json:"amount"`
		Category    string `json:"category"`
		SubCategory string `json:"subCategory"`
		Type        string `json:"type"` // payment method, free text
		Note        string `json:"note"`
	}

	// Workout is one logged training session. Several sessions may
	// share a date; active-day counts deduplicate by date.
	Workout struct {
		ID          string   `json:"id"`
		Date        string   `json:"date"`
		WorkoutType string   `json:"workoutType"`
		Intensity   int      `json:"intensity"` // 1-5
		Weight      *float64 `json:"weight"`
		BodyFat     *float64 `json:"bodyFat"`
		Feel        string   `json:"feel"`
		Drink       bool     `json:"drink"` // drank the same day
		Note        string   `json:"note"`
	}

	// DrinkLog records one drinking day. At most one log exists per
	// date; the stores enforce upsert-by-date semantics.
	DrinkLog struct {
		ID            string   `json:"id"`
		Date          string   `json:"date"`
		Drank         bool     `json:"drank"`
		Name          string   `json:"name"`
		Level         int      `json:"level"` // 1-5
		DurationHours *float64 `json:"durationHours"`
		Reasons       []string `json:"reasons"`
		OtherReason   string   `json:"otherReason"`
		Venue         string   `json:"venue"`
		StartTime     string   `json:"startTime"`
		Enjoyment     *int     `json:"enjoyment"` // 1-5
		Regret        string   `json:"regret"`    // None, Mid, High or empty
		WouldRepeat   *bool    `json:"wouldRepeat"`
		Note          string   `json:"note"`
	}

	Todo struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		Done      bool      `json:"done"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// User is the single admin account behind the login gate.
	User struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Name         string `json:"name"`
		PasswordHash string `json:"-"`
		Role         string `json:"role"`
		IsActive     bool   `json:"-"`
	}
)

func (e Expense) Validate() error {
	if !ValidDate(e.Date) {
		return ErrInvalidDate
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (w Workout) Validate() error {
	if !ValidDate(w.Date) {
		return ErrInvalidDate
	}
	if strings.TrimSpace(w.WorkoutType) == "" {
		return ErrEmptyType
	}
	if w.Intensity < 1 || w.Intensity > 5 {
		return ErrInvalidLevel
	}
	return nil
}

func (d DrinkLog) Validate() error {
	if !ValidDate(d.Date) {
		return ErrInvalidDate
	}
	if d.Level < 1 || d.Level > 5 {
		return ErrInvalidLevel
	}
	if d.Enjoyment != nil && (*d.Enjoyment < 1 || *d.Enjoyment > 5) {
		return ErrInvalidLevel
	}
	switch d.Regret {
	case "", "None", "Mid", "High":
	default:
		return ErrInvalidRegret
	}
	return nil
}

func (t Todo) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

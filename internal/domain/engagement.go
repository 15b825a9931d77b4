// Package domain holds the HealthQuest data model.
// The engagement loop: log diet and exercise each day, complete the day for
// points, keep the streak going, and spend points on rewards.
package domain

import "time"

// ─── Profile ────────────────────────────────────────────────────────────────

// Gender of the tracked child. Retained for growth-chart classification.
type Gender string

const (
	GenderBoy  Gender = "boy"
	GenderGirl Gender = "girl"
)

// ParseGender accepts "boy"/"girl" and the plural forms used by older data.
func ParseGender(s string) (Gender, bool) {
	switch s {
	case "boy", "boys":
		return GenderBoy, true
	case "girl", "girls":
		return GenderGirl, true
	}
	return "", false
}

// Profile is created once at setup. Name, gender and birthdate never change;
// Height follows the latest health update.
type Profile struct {
	Name          string    `json:"name"`
	Gender        Gender    `json:"gender"`
	Birthdate     Date      `json:"birthdate"`
	Height        float64   `json:"height"`
	InitialWeight float64   `json:"initial_weight"`
	TargetWeight  float64   `json:"target_weight"`
	CreatedAt     time.Time `json:"created_at"`
}

// WeightEntry is one body measurement. BMI and BMIStatus are derived on read.
type WeightEntry struct {
	Date      Date    `json:"date"`
	Weight    float64 `json:"weight"`
	Height    float64 `json:"height"`
	BMI       float64 `json:"bmi,omitempty"`
	BMIStatus string  `json:"bmi_status,omitempty"`
}

// ─── Daily Log ──────────────────────────────────────────────────────────────

// ItemKind separates the two item sets of a day.
type ItemKind string

const (
	ItemDiet     ItemKind = "diet"
	ItemExercise ItemKind = "exercise"
)

// DailyLog is the record of one calendar date.
// Diet and Exercise are sets, kept sorted.
type DailyLog struct {
	Date        Date      `json:"date"`
	Diet        []string  `json:"diet"`
	Exercise    []string  `json:"exercise"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// Items returns the set for kind.
func (l DailyLog) Items(kind ItemKind) []string {
	if kind == ItemExercise {
		return l.Exercise
	}
	return l.Diet
}

// ─── Points Ledger ──────────────────────────────────────────────────────────

// EntryKind categorizes a ledger entry so each bonus stays visible in history.
type EntryKind string

const (
	EntryDiet        EntryKind = "diet"
	EntryExercise    EntryKind = "exercise"
	EntryStreakBonus EntryKind = "streak_bonus"
	EntryTaskReward  EntryKind = "task_reward"
	EntryRedemption  EntryKind = "redemption"
)

// LedgerEntry is an immutable points movement.
// Balance is the running total after this entry.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	Ref         string    `json:"ref"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        EntryKind `json:"kind"`
	Delta       int64     `json:"delta"`
	Description string    `json:"description"`
	Balance     int64     `json:"balance"`
}

// ─── Rewards ────────────────────────────────────────────────────────────────

// Reward is a fixed catalog entry keyed by its cost.
type Reward struct {
	Cost        int64  `json:"cost" toml:"cost"`
	Description string `json:"description" toml:"description"`
}

// RewardView annotates a reward against the current balance.
type RewardView struct {
	Reward
	Affordable bool `json:"affordable"`
}

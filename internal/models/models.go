package models

import (
	"time"

	"github.com/google/uuid"
)

// Task and subtask priority levels. Lower value means more urgent.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// PriorityLabel returns the display name for a priority value.
func PriorityLabel(p int) string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return "Unknown"
}

// ValidPriority reports whether p is one of the three priority levels.
func ValidPriority(p int) bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// NewID generates a unique identifier for a new entity.
func NewID() string {
	return uuid.NewString()
}

// Timestamp formats t as an ISO-8601 string, the format used for all
// persisted dates.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// CalculateProgress returns the completion percentage for completed
// items out of total. An empty set reports zero progress.
func CalculateProgress(total, completed int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(completed) / float64(total) * 100.0
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

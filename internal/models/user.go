package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// RoleStudent marks an account that completes tasks and earns points.
	RoleStudent = "student"
	// RoleTeacher marks an account that authors assignments.
	RoleTeacher = "teacher"
)

// User represents a platform account together with its progression state.
// Points and the unlocked sets are mutated only by the progression engine;
// the unlocked sets never shrink.
type User struct {
	ID              uint                       `gorm:"primaryKey" json:"id"`
	Name            string                     `gorm:"size:255;not null" json:"name"`
	Email           string                     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role            string                     `gorm:"size:32;not null;default:student" json:"role"`
	Points          int                        `gorm:"not null;default:0" json:"points"`
	Achievements    datatypes.JSONSlice[string] `json:"achievements"`
	Badges          datatypes.JSONSlice[string] `json:"badges"`
	CompletedLevels datatypes.JSONSlice[int]    `json:"completed_levels"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// HasAchievement reports whether the achievement id is already unlocked.
func (u User) HasAchievement(id string) bool {
	for _, unlocked := range u.Achievements {
		if unlocked == id {
			return true
		}
	}
	return false
}

// HasBadge reports whether the badge id is already unlocked.
func (u User) HasBadge(id string) bool {
	for _, unlocked := range u.Badges {
		if unlocked == id {
			return true
		}
	}
	return false
}

// HasCompletedLevel reports whether the game level was already recorded.
func (u User) HasCompletedLevel(levelID int) bool {
	for _, completed := range u.CompletedLevels {
		if completed == levelID {
			return true
		}
	}
	return false
}

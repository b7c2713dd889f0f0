package catalog

// RequirementType enumerates the statistics an unlock predicate can target.
type RequirementType string

const (
	// RequirementTasksCompleted counts approved submissions of any type.
	RequirementTasksCompleted RequirementType = "tasks_completed"
	// RequirementTaskTypeCompleted counts approved submissions of one type.
	RequirementTaskTypeCompleted RequirementType = "task_type_completed"
	// RequirementLevelsCompleted counts completed game levels.
	RequirementLevelsCompleted RequirementType = "levels_completed"
	// RequirementPointsEarned compares against the user's point total.
	RequirementPointsEarned RequirementType = "points_earned"
	// RequirementAchievementsEarned counts unlocked achievements (badges).
	RequirementAchievementsEarned RequirementType = "achievements_earned"
)

// Requirement is a monotone threshold predicate over user statistics: once
// met it stays met, because every input only ever grows.
type Requirement struct {
	Type     RequirementType `json:"type"`
	TaskType string          `json:"task_type,omitempty"`
	Count    int             `json:"count"`
}

// AchievementDefinition describes one unlockable achievement.
type AchievementDefinition struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Requirement Requirement `json:"requirement"`
}

// BadgeDefinition describes one tiered badge earned by collecting achievements.
type BadgeDefinition struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Icon        string      `json:"icon"`
	Color       string      `json:"color"`
	Requirement Requirement `json:"requirement"`
}

// Stats is the snapshot of aggregates a requirement is evaluated against.
type Stats struct {
	ApprovedTasks       int
	ApprovedTasksByType map[string]int
	CompletedLevels     int
	Points              int
	AchievementsEarned  int
}

// Current returns the statistic the requirement targets.
func (r Requirement) Current(stats Stats) int {
	switch r.Type {
	case RequirementTasksCompleted:
		return stats.ApprovedTasks
	case RequirementTaskTypeCompleted:
		return stats.ApprovedTasksByType[r.TaskType]
	case RequirementLevelsCompleted:
		return stats.CompletedLevels
	case RequirementPointsEarned:
		return stats.Points
	case RequirementAchievementsEarned:
		return stats.AchievementsEarned
	default:
		return 0
	}
}

// MetBy reports whether the requirement holds against the snapshot.
func (r Requirement) MetBy(stats Stats) bool {
	return r.Count > 0 && r.Current(stats) >= r.Count
}

// Progress returns the completion percentage towards the requirement,
// capped at 100.
func (r Requirement) Progress(stats Stats) float64 {
	if r.Count <= 0 {
		return 0
	}
	progress := float64(r.Current(stats)) / float64(r.Count) * 100
	if progress > 100 {
		return 100
	}
	return progress
}

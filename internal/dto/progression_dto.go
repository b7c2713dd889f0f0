package dto

// LevelCompleteRequest describes the payload for recording a finished level.
type LevelCompleteRequest struct {
	LevelID int `json:"level_id" validate:"required,min=1"`
	Score   int `json:"score" validate:"omitempty,min=0"`
}

// LevelCompleteResponse reports the progression changes a level completion
// triggered.
type LevelCompleteResponse struct {
	LevelID         int      `json:"level_id"`
	PointsAwarded   int      `json:"points_awarded"`
	TotalPoints     int      `json:"total_points"`
	NewAchievements []string `json:"new_achievements"`
	NewBadges       []string `json:"new_badges"`
}

// AchievementStatusResponse is one achievement with the user's progress.
type AchievementStatusResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Unlocked    bool    `json:"unlocked"`
	Progress    float64 `json:"progress"`
}

// BadgeStatusResponse is one badge with the user's progress.
type BadgeStatusResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Icon     string  `json:"icon"`
	Color    string  `json:"color"`
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

// ProgressResponse is the full progression view for one user.
type ProgressResponse struct {
	Points          int                         `json:"points"`
	ApprovedTasks   int                         `json:"approved_tasks"`
	CompletedLevels int                         `json:"completed_levels"`
	Achievements    []AchievementStatusResponse `json:"achievements"`
	Badges          []BadgeStatusResponse       `json:"badges"`
}

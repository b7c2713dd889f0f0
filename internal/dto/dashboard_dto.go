package dto

// DashboardSummary carries the headline counters of a student's standing.
type DashboardSummary struct {
	Points             int     `json:"points"`
	TotalSubmissions   int     `json:"total_submissions"`
	ApprovedTasks      int     `json:"approved_tasks"`
	OpenAssignments    int     `json:"open_assignments"`
	CompletedTasks     int     `json:"completed_assignments"`
	OverdueAssignments int     `json:"overdue_assignments"`
	AchievementsEarned int     `json:"achievements_earned"`
	BadgesEarned       int     `json:"badges_earned"`
	CompletedLevels    int     `json:"completed_levels"`
	AchievementRate    float64 `json:"achievement_rate"`
}

// DashboardResponse aggregates a student's standing for the dashboard view.
type DashboardResponse struct {
	UserID            uint                        `json:"user_id"`
	Name              string                      `json:"name"`
	Summary           DashboardSummary            `json:"summary"`
	Achievements      []AchievementStatusResponse `json:"achievements"`
	Badges            []BadgeStatusResponse       `json:"badges"`
	RecentSubmissions []SubmissionResponse        `json:"recent_submissions"`
}

package models

// DashboardStats is an aggregate snapshot across both entity types.
type DashboardStats struct {
	MatchesTotal        int                      `json:"matches_total"`
	MatchesByStatus     map[MatchStatus]int      `json:"matches_by_status"`
	TournamentsTotal    int                      `json:"tournaments_total"`
	TournamentsByStatus map[TournamentStatus]int `json:"tournaments_by_status"`
}

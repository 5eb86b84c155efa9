package model

import "time"

// StatusFinal is the terminal history status; once set, the record is
// treated as read-only.
const StatusFinal = "Final"

// ScorePoint is one deduplicated entry on a game's score timeline.
type ScorePoint struct {
	Home     int    `json:"home"`
	Away     int    `json:"away"`
	Sequence int    `json:"action"`
	Period   int    `json:"period"`
	Clock    string `json:"clock"`
}

// GameInfo identifies the matchup a history belongs to.
type GameInfo struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	GameID   string `json:"game_id"`
}

// FinalScore is the closing score folded into the history on finalize.
type FinalScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// PlayerStatLine is one row of the box score attached to a finished game.
type PlayerStatLine struct {
	Name      string `json:"name"`
	Team      string `json:"team"`
	Min       string `json:"min"`
	Points    int    `json:"pts"`
	Rebounds  int    `json:"reb"`
	Assists   int    `json:"ast"`
	Steals    int    `json:"stl"`
	Blocks    int    `json:"blk"`
	FGM       int    `json:"fgm"`
	FGA       int    `json:"fga"`
	FTM       int    `json:"ftm"`
	FTA       int    `json:"fta"`
	OffReb    int    `json:"oreb"`
	DefReb    int    `json:"dreb"`
	Turnovers int    `json:"tov"`
	Fouls     int    `json:"pf"`
}

// History is the durable per-game record served to downstream readers.
type History struct {
	Messages     []Message        `json:"messages"`
	Scores       []ScorePoint     `json:"scores"`
	GameInfo     GameInfo         `json:"game_info"`
	Status       string           `json:"status"`
	LastAction   int              `json:"last_action"`
	LeadChanges  int              `json:"lead_changes"`
	FinalScore   FinalScore       `json:"final_score"`
	TotalActions int              `json:"total_actions"`
	PlayerStats  []PlayerStatLine `json:"player_stats,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Final reports whether the history has reached its terminal status.
func (h *History) Final() bool {
	return h.Status == StatusFinal
}

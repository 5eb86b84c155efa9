package feed

import (
	"strconv"
	"strings"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
	"github.com/jasper9/nbastats.fun/internal/domain/normalize"
)

// gameKey renders a numeric provider game id as the pipeline's string key.
func gameKey(id int) string {
	return strconv.Itoa(id)
}

// Team is the provider's team shape.
type Team struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}

// Game is the provider's game shape. Status carries either "Final", a
// tip-off time string for scheduled games, or an in-progress marker.
type Game struct {
	ID           int    `json:"id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Time         string `json:"time"`
	Period       int    `json:"period"`
	HomeScore    int    `json:"home_team_score"`
	VisitorScore int    `json:"visitor_team_score"`
	HomeTeam     Team   `json:"home_team"`
	VisitorTeam  Team   `json:"visitor_team"`
}

// Play is the provider's play-by-play shape. Optional fields (team) may be
// absent for period and administrative events.
type Play struct {
	Order       int    `json:"order"`
	Period      int    `json:"period"`
	Clock       string `json:"clock"`
	HomeScore   int    `json:"home_score"`
	AwayScore   int    `json:"away_score"`
	Team        *Team  `json:"team"`
	Type        string `json:"type"`
	Text        string `json:"text"`
	ScoringPlay bool   `json:"scoring_play"`
	ScoreValue  int    `json:"score_value"`
}

// Stat is one provider box-score line.
type Stat struct {
	Player struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"player"`
	Team      Team   `json:"team"`
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
	Turnovers int    `json:"turnover"`
	Fouls     int    `json:"pf"`
}

// Raw converts a wire play into the normalizer's provider-neutral shape.
func (p Play) Raw() normalize.Raw {
	raw := normalize.Raw{
		Order:      p.Order,
		Period:     p.Period,
		Clock:      p.Clock,
		HomeScore:  p.HomeScore,
		AwayScore:  p.AwayScore,
		Type:       p.Type,
		Text:       p.Text,
		Scoring:    p.ScoringPlay,
		ScoreValue: p.ScoreValue,
	}
	if p.Team != nil {
		raw.Team = p.Team.FullName
	}
	return raw
}

// Line converts a wire stat into the history's box-score row.
func (s Stat) Line() model.PlayerStatLine {
	name := strings.TrimSpace(s.Player.FirstName + " " + s.Player.LastName)
	return model.PlayerStatLine{
		Name:      name,
		Team:      s.Team.Abbreviation,
		Min:       s.Min,
		Points:    s.Points,
		Rebounds:  s.Rebounds,
		Assists:   s.Assists,
		Steals:    s.Steals,
		Blocks:    s.Blocks,
		FGM:       s.FGM,
		FGA:       s.FGA,
		FTM:       s.FTM,
		FTA:       s.FTA,
		OffReb:    s.OffReb,
		DefReb:    s.DefReb,
		Turnovers: s.Turnovers,
		Fouls:     s.Fouls,
	}
}

// Info builds the matchup identity attached to a game's history.
func (g Game) Info() model.GameInfo {
	return model.GameInfo{
		HomeTeam: g.HomeTeam.FullName,
		AwayTeam: g.VisitorTeam.FullName,
		GameID:   gameKey(g.ID),
	}
}

// Key returns the game's string identifier used across the pipeline.
func (g Game) Key() string {
	return gameKey(g.ID)
}

// Live reports whether a game is in progress: it has tipped off and has
// not gone final. A 0-0 game in the first period already counts.
func (g Game) Live() bool {
	return g.Period > 0 && !g.Final()
}

// Final reports whether a game has ended.
func (g Game) Final() bool {
	return g.Status == model.StatusFinal || g.Time == model.StatusFinal
}

// Scheduled reports whether a game has not tipped off yet; the provider's
// status carries a clock time like "7:00 PM ET" in that case.
func (g Game) Scheduled() bool {
	return strings.Contains(g.Status, "AM") || strings.Contains(g.Status, "PM")
}

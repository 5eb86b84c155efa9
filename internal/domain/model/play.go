// Package model contains domain models passed between pipeline stages.
package model

// Category is the coarse classification of a play-by-play event.
type Category string

// Play categories produced by the normalizer.
const (
	CategoryShot      Category = "shot"
	CategoryFreeThrow Category = "freethrow"
	CategoryRebound   Category = "rebound"
	CategorySteal     Category = "steal"
	CategoryBlock     Category = "block"
	CategoryTurnover  Category = "turnover"
	CategoryFoul      Category = "foul"
	CategoryPeriod    Category = "period"
	CategoryTimeout   Category = "timeout"
	CategoryJumpBall  Category = "jumpball"
	CategoryChallenge Category = "challenge"
	CategoryUnknown   Category = "unknown"
)

// Play is one normalized play-by-play event. Immutable once produced;
// consumed exactly once by the pipeline.
type Play struct {
	Sequence    int      // provider order number, monotonic per game, gap-tolerant
	Period      int      // 1-4, 5+ for overtime
	Clock       string   // remaining time in period, display string
	HomeScore   int      // score at this instant
	AwayScore   int
	Team        string   // tricode of the acting team, may be empty
	Player      string   // acting player, may be empty
	Assist      string   // assisting player on assisted makes, may be empty
	Description string   // provider free text
	SubType     string   // raw provider play type, e.g. "driving dunk shot"
	Category    Category
	Scoring     bool // this play changed the score
	ScoreValue  int  // points awarded when Scoring
	Made        bool // shot or free throw converted
	Offensive   bool // offensive rebound
}

package model

// FactKind discriminates detected occurrences handed from the tracker and
// milestone detector to the composer. Facts are never persisted; they live
// only for the duration of one play's processing.
type FactKind string

const (
	FactLeadChange  FactKind = "lead_change"
	FactLargestLead FactKind = "largest_lead"
	FactBigLead     FactKind = "big_lead"
	FactTie         FactKind = "tie"
	FactMilestone   FactKind = "milestone"
	FactGameFinal   FactKind = "game_final"
)

// MilestoneKind names the statistical threshold a milestone fact crossed.
type MilestoneKind string

const (
	MilestoneDoubleDouble MilestoneKind = "double_double"
	MilestoneTripleDouble MilestoneKind = "triple_double"
	MilestonePoints       MilestoneKind = "points"
	MilestoneBlocks       MilestoneKind = "blocks"
	MilestoneSteals       MilestoneKind = "steals"
)

// Side identifies a team by its role in the matchup.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Fact is one detected occurrence. Only the fields relevant to Kind are
// populated.
type Fact struct {
	Kind FactKind

	// FactLeadChange, FactLargestLead, FactBigLead, FactGameFinal
	Side   Side
	Amount int // lead size or victory margin

	// FactMilestone
	Player    string
	Milestone MilestoneKind
	Value     int

	// FactBigLead
	Period int
}

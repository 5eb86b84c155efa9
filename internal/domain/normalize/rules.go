package normalize

import (
	"strings"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
)

// rule maps a substring of the provider's play type (or description) to a
// category. Rules are evaluated in order and the first match wins, so the
// specific precede the general: a "block" event whose provider category
// says "shot" still classifies as a block.
type rule struct {
	keyword  string
	category model.Category
}

var rules = []rule{
	{"block", model.CategoryBlock},
	{"steal", model.CategorySteal},
	{"free throw", model.CategoryFreeThrow},
	{"freethrow", model.CategoryFreeThrow},
	{"rebound", model.CategoryRebound},
	{"turnover", model.CategoryTurnover},
	{"foul", model.CategoryFoul},
	{"ejection", model.CategoryFoul},
	{"period", model.CategoryPeriod},
	{"timeout", model.CategoryTimeout},
	{"jumpball", model.CategoryJumpBall},
	{"jump ball", model.CategoryJumpBall},
	{"challenge", model.CategoryChallenge},
	{"instant replay", model.CategoryChallenge},
	{"shot", model.CategoryShot},
	{"dunk", model.CategoryShot},
	{"layup", model.CategoryShot},
	{"jumper", model.CategoryShot},
	{"alley oop", model.CategoryShot},
	{"putback", model.CategoryShot},
	{"3pt", model.CategoryShot},
	{"tip", model.CategoryShot},
}

// Classify maps a provider play type plus its free-text description onto
// the coarse category set. The type field is consulted first; the text is
// a fallback for providers that bury the event kind in prose. Ties are not
// a category here; they are derived later from score deltas.
func Classify(playType, text string) model.Category {
	lowerType := strings.ToLower(playType)
	for _, r := range rules {
		if strings.Contains(lowerType, r.keyword) {
			return r.category
		}
	}
	lowerText := strings.ToLower(text)
	for _, r := range rules {
		if strings.Contains(lowerText, r.keyword) {
			return r.category
		}
	}
	return model.CategoryUnknown
}

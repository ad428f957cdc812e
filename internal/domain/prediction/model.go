package prediction

// Category identifies the prediction table a row belongs to.
type Category string

const (
	CategoryMatch     Category = "match"
	CategoryTopscorer Category = "topscorer"
	CategoryGroup     Category = "group"
	CategoryWinner    Category = "winner"
)

var AllCategories = []Category{CategoryMatch, CategoryTopscorer, CategoryGroup, CategoryWinner}

type MatchPrediction struct {
	ID            string
	UserID        string
	PoolID        string
	MatchID       string
	HomeGoals     int
	AwayGoals     int
	PointsEarned  *int
	IsAIGenerated bool
}

// TopscorerPrediction is unique per (user, pool).
type TopscorerPrediction struct {
	ID           string
	UserID       string
	PoolID       string
	PlayerID     string
	PointsEarned *int
}

type GroupPrediction struct {
	ID           string
	UserID       string
	PoolID       string
	GroupLabel   string
	Teams        []string
	PointsEarned *int
}

type WinnerPrediction struct {
	ID           string
	UserID       string
	PoolID       string
	Country      string
	PointsEarned *int
}

// PointsChanged reports whether computed differs from the stored value.
// A never-scored row always counts as changed.
func PointsChanged(stored *int, computed int) bool {
	return stored == nil || *stored != computed
}

package memory

import (
	"time"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/domain/player"
	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
)

const (
	PoolIDOffice  = "pool-office"
	PoolIDFriends = "pool-friends"
)

// Seed fills a store with a small tournament for local runs with APP_STORAGE=memory.
func Seed(store *Store) *Store {
	kickoff := time.Date(2026, 6, 11, 19, 0, 0, 0, time.UTC)

	store.PutMatch(
		match.Match{ID: "m-1", HomeTeam: "Mexico", AwayTeam: "South Africa", HomeScore: intPtr(2), AwayScore: intPtr(1), Status: match.StatusFinished, KickoffAt: kickoff},
		match.Match{ID: "m-2", HomeTeam: "Canada", AwayTeam: "Qatar", HomeScore: intPtr(1), AwayScore: intPtr(1), Status: match.StatusFinished, KickoffAt: kickoff.Add(24 * time.Hour)},
		match.Match{ID: "m-3", HomeTeam: "USA", AwayTeam: "Paraguay", Status: match.StatusPending, KickoffAt: kickoff.Add(48 * time.Hour)},
	)
	store.PutPlayer(
		player.Player{ID: "pl-mbappe", Name: "Kylian Mbappé", Country: "France", Goals: 3},
		player.Player{ID: "pl-kane", Name: "Harry Kane", Country: "England", Goals: 3},
		player.Player{ID: "pl-messi", Name: "Lionel Messi", Country: "Argentina", Goals: 2},
		player.Player{ID: "pl-haaland", Name: "Erling Haaland", Country: "Norway", Goals: 1},
	)
	store.PutGroupStanding(groupstanding.Standing{
		GroupLabel: "A",
		Teams:      []string{"Mexico", "South Africa", "Korea Republic", "Czechia"},
		UpdatedAt:  kickoff.Add(14 * 24 * time.Hour),
	})

	store.PutPool(
		pool.Pool{ID: PoolIDOffice, Name: "Office poule"},
		pool.Pool{ID: PoolIDFriends, Name: "Friends poule", Rules: scoring.RulesOverride{CorrectScore: intPtr(7)}},
	)
	store.PutMember(
		pool.Member{ID: "mem-1", PoolID: PoolIDOffice, UserID: "user-anna"},
		pool.Member{ID: "mem-2", PoolID: PoolIDOffice, UserID: "user-bram"},
		pool.Member{ID: "mem-3", PoolID: PoolIDOffice, UserID: "user-chris"},
		pool.Member{ID: "mem-4", PoolID: PoolIDFriends, UserID: "user-anna"},
		pool.Member{ID: "mem-5", PoolID: PoolIDFriends, UserID: "user-dewi"},
	)
	store.PutMatchPrediction(
		prediction.MatchPrediction{ID: "mp-1", UserID: "user-anna", PoolID: PoolIDOffice, MatchID: "m-1", HomeGoals: 2, AwayGoals: 1},
		prediction.MatchPrediction{ID: "mp-2", UserID: "user-bram", PoolID: PoolIDOffice, MatchID: "m-1", HomeGoals: 3, AwayGoals: 0},
		prediction.MatchPrediction{ID: "mp-3", UserID: "user-chris", PoolID: PoolIDOffice, MatchID: "m-1", HomeGoals: 0, AwayGoals: 1, IsAIGenerated: true},
		prediction.MatchPrediction{ID: "mp-4", UserID: "user-anna", PoolID: PoolIDOffice, MatchID: "m-2", HomeGoals: 0, AwayGoals: 0},
		prediction.MatchPrediction{ID: "mp-5", UserID: "user-anna", PoolID: PoolIDFriends, MatchID: "m-1", HomeGoals: 2, AwayGoals: 1},
		prediction.MatchPrediction{ID: "mp-6", UserID: "user-dewi", PoolID: PoolIDFriends, MatchID: "m-1", HomeGoals: 1, AwayGoals: 0},
	)
	store.PutTopscorerPrediction(
		prediction.TopscorerPrediction{ID: "tp-1", UserID: "user-anna", PoolID: PoolIDOffice, PlayerID: "pl-kane"},
		prediction.TopscorerPrediction{ID: "tp-2", UserID: "user-bram", PoolID: PoolIDOffice, PlayerID: "pl-messi"},
	)
	store.PutGroupPrediction(
		prediction.GroupPrediction{ID: "gp-1", UserID: "user-chris", PoolID: PoolIDOffice, GroupLabel: "a", Teams: []string{"mexico", "south africa", "korea republic", "czechia"}},
	)
	store.PutWinnerPrediction(
		prediction.WinnerPrediction{ID: "wp-1", UserID: "user-dewi", PoolID: PoolIDFriends, Country: "Spain"},
	)
	return store
}

package leaderboard

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
)

func TestKeyBuilder(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "default prefix", prefix: "", want: "poule:{p1}:standings"},
		{name: "custom prefix", prefix: "wk2026", want: "wk2026:{p1}:standings"},
		{name: "trims separators", prefix: " staging: ", want: "staging:{p1}:standings"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, newKeyBuilder(tc.prefix).standings("p1"))
		})
	}

	keys := newKeyBuilder("poule")
	assert.Equal(t, "poule:{p1}:ranks", keys.ranks("p1"))
	assert.Equal(t, "poule:{p1}:meta", keys.meta("p1"))
	assert.Equal(t, "poule:runs:last", keys.lastRuns())
}

func TestStandingsToMembers(t *testing.T) {
	members, ranks := standingsToMembers([]scoringevent.StandingRow{
		{UserID: "u1", Points: 10, Rank: 1},
		{UserID: "u2", Points: 4, Rank: 2},
		{UserID: "u4", Points: 4, Rank: 2},
	})

	assert.Equal(t, []redis.Z{
		{Score: 10, Member: "u1"},
		{Score: 4, Member: "u2"},
		{Score: 4, Member: "u4"},
	}, members)
	assert.Equal(t, []any{"u1", 1, "u2", 2, "u4", 2}, ranks)
}

func TestStandingsToMembers_Empty(t *testing.T) {
	members, ranks := standingsToMembers(nil)
	assert.Empty(t, members)
	assert.Empty(t, ranks)
}

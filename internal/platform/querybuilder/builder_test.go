package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "home_score").
		From("matches").
		Where(Eq("status", "finished"), NotNull("home_score"), IsNull("deleted_at")).
		OrderBy("kickoff_at", "id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, home_score FROM matches WHERE status = $1 AND home_score IS NOT NULL AND deleted_at IS NULL ORDER BY kickoff_at, id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "finished" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InExprAndLock(t *testing.T) {
	query, args, err := Select("user_id", "COALESCE(SUM(points_earned), 0) AS points").
		From("predictions").
		Where(InStrings("pool_id", []string{"p1", "p2"}), Expr("points_earned >= ?", 0)).
		GroupBy("user_id").
		ForUpdate().
		ToSQL()
	require.NoError(t, err)
	require.Equal(t,
		"SELECT user_id, COALESCE(SUM(points_earned), 0) AS points FROM predictions WHERE pool_id IN ($1, $2) AND points_earned >= $3 GROUP BY user_id FOR UPDATE",
		query,
	)
	require.Equal(t, []any{"p1", "p2", 0}, args)
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("matches").Where(InStrings("id", nil)).ToSQL()
	require.NoError(t, err)
	require.Equal(t, "SELECT id FROM matches WHERE 1=0", query)
	require.Empty(t, args)
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("group_standings").
		Columns("group_label", "teams").
		Values("A", "{}").
		Suffix("ON CONFLICT (group_label) DO UPDATE SET teams = EXCLUDED.teams").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO group_standings (group_label, teams) VALUES ($1, $2) ON CONFLICT (group_label) DO UPDATE SET teams = EXCLUDED.teams"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "A" || args[1] != "{}" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("pool_members").
		Set("points", 12).
		SetExpr("previous_rank", "COALESCE(rank, ?)", 3).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "m1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE pool_members SET points = $1, previous_rank = COALESCE(rank, $2), updated_at = NOW() WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	require.Equal(t, []any{12, 3, "m1"}, args)
}

func TestUpdateBuilder_RequiresWhere(t *testing.T) {
	_, _, err := Update("pool_members").Set("rank", 1).ToSQL()
	require.Error(t, err)
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID      string `db:"id"`
		Skipped string `db:"-"`
		Points  int    `db:"points,omitempty"`
		hidden  string
	}

	query, args, err := InsertModel("t", row{ID: "x", Skipped: "s", Points: 4, hidden: "h"}, "")
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO t (id, points) VALUES ($1, $2)", query)
	require.Equal(t, []any{"x", 4}, args)
}

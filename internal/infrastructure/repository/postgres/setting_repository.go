package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/poule-scoring/internal/domain/setting"
	"github.com/riskibarqy/poule-scoring/internal/domain/tournament"
	qb "github.com/riskibarqy/poule-scoring/internal/platform/querybuilder"
)

type SettingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Load(ctx context.Context) (setting.Snapshot, error) {
	query, args, err := qb.Select("key", "value").From("global_settings").
		Where(qb.InStrings("key", []string{setting.KeyTournamentResult, setting.KeyDefaultScoringRules})).
		ToSQL()
	if err != nil {
		return setting.Snapshot{}, fmt.Errorf("build select global settings query: %w", err)
	}

	var rows []globalSettingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return setting.Snapshot{}, fmt.Errorf("select global settings: %w", err)
	}
	return snapshotFromRows(rows)
}

func snapshotFromRows(rows []globalSettingTableModel) (setting.Snapshot, error) {
	var snapshot setting.Snapshot
	for _, row := range rows {
		if len(row.Value) == 0 {
			continue
		}
		var err error
		switch row.Key {
		case setting.KeyTournamentResult:
			err = sonic.Unmarshal(row.Value, &snapshot.Result)
		case setting.KeyDefaultScoringRules:
			err = sonic.Unmarshal(row.Value, &snapshot.DefaultRules)
		}
		if err != nil {
			return setting.Snapshot{}, fmt.Errorf("decode setting %s: %w", row.Key, err)
		}
	}
	return snapshot, nil
}

func (r *SettingRepository) SaveTournamentResult(ctx context.Context, result tournament.Result) error {
	value, err := sonic.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode tournament result: %w", err)
	}

	query, args, err := qb.InsertInto("global_settings").
		Columns("key", "value").
		Values(setting.KeyTournamentResult, string(value)).
		Suffix(`ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert tournament result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tournament result: %w", err)
	}
	return nil
}

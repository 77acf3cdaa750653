package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onegotchi/arena/internal/game/arena"
	"github.com/onegotchi/arena/internal/game/battle"
	"github.com/onegotchi/arena/internal/game/pet"
)

// BattleRecord is one row of battle history.
type BattleRecord struct {
	ID             string
	Trainer        string
	SelfPetID      string
	SelfName       string
	OpponentPetID  string
	OpponentName   string
	Winner         battle.Side
	Rounds         int
	SelfHealth     int
	OpponentHealth int
	Reward         string
	Epilogue       string
	Log            []battle.LogEntry
	StartedAt      time.Time
	FinishedAt     time.Time
}

// SelfWon reports whether the trainer's pet won.
func (b BattleRecord) SelfWon() bool { return b.Winner == battle.SideSelf }

// Record is a trainer's win/loss tally.
type Record struct {
	Wins   int
	Losses int
}

// Total returns the number of battles fought.
func (r Record) Total() int { return r.Wins + r.Losses }

// BattleRepository stores finished battles. It implements arena.Recorder.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a BattleRepository backed by db.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

var _ arena.Recorder = (*BattleRepository)(nil)

// Record implements arena.Recorder. Recording the same match twice is a no-op.
func (r *BattleRepository) Record(ctx context.Context, res arena.MatchResult) error {
	logJSON, err := json.Marshal(res.Log)
	if err != nil {
		return fmt.Errorf("encoding battle log: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO battles (id, trainer, self_pet_id, self_name, opponent_pet_id, opponent_name,
		                      winner, rounds, self_health, opponent_health, reward, epilogue, log,
		                      started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (id) DO NOTHING`,
		res.MatchID, pet.NormalizeOwner(res.Trainer),
		res.Self.ID, res.Self.Name, res.Opponent.ID, res.Opponent.Name,
		int(res.Winner), res.Rounds, res.SelfHealth, res.OppHealth,
		res.Reward, res.Epilogue, logJSON,
		res.StartedAt, res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting battle: %w", err)
	}
	return nil
}

// ListRecentByTrainer returns up to limit battles fought by trainer, newest first.
//
// Precondition: limit > 0.
func (r *BattleRepository) ListRecentByTrainer(ctx context.Context, trainer string, limit int) ([]BattleRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, trainer, self_pet_id, self_name, opponent_pet_id, opponent_name,
		        winner, rounds, self_health, opponent_health, reward, epilogue, log,
		        started_at, finished_at
		 FROM battles WHERE trainer = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`,
		pet.NormalizeOwner(trainer), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battles: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanBattle)
	if err != nil {
		return nil, fmt.Errorf("scanning battles: %w", err)
	}
	return out, nil
}

// RecordFor returns the win/loss tally of trainer.
func (r *BattleRepository) RecordFor(ctx context.Context, trainer string) (Record, error) {
	var rec Record
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE winner = $2),
		        COUNT(*) FILTER (WHERE winner <> $2)
		 FROM battles WHERE trainer = $1`,
		pet.NormalizeOwner(trainer), int(battle.SideSelf),
	).Scan(&rec.Wins, &rec.Losses)
	if err != nil {
		return Record{}, fmt.Errorf("counting battles: %w", err)
	}
	return rec, nil
}

func scanBattle(row pgx.CollectableRow) (BattleRecord, error) {
	var (
		b       BattleRecord
		winner  int
		logJSON []byte
	)
	err := row.Scan(&b.ID, &b.Trainer, &b.SelfPetID, &b.SelfName, &b.OpponentPetID, &b.OpponentName,
		&winner, &b.Rounds, &b.SelfHealth, &b.OpponentHealth, &b.Reward, &b.Epilogue, &logJSON,
		&b.StartedAt, &b.FinishedAt)
	if err != nil {
		return BattleRecord{}, err
	}
	b.Winner = battle.Side(winner)
	if err := json.Unmarshal(logJSON, &b.Log); err != nil {
		return BattleRecord{}, fmt.Errorf("decoding battle log: %w", err)
	}
	return b, nil
}

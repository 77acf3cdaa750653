package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onegotchi/arena/internal/game/pet"
)

const petColumns = `id, owner, name, hunger, happiness, stage, birth_ms`

// PetRepository implements pet.Registry over the pets table.
type PetRepository struct {
	db *pgxpool.Pool
}

// NewPetRepository creates a PetRepository backed by db.
func NewPetRepository(db *pgxpool.Pool) *PetRepository {
	return &PetRepository{db: db}
}

var _ pet.Registry = (*PetRepository)(nil)

// ListByOwner implements pet.Registry.
func (r *PetRepository) ListByOwner(ctx context.Context, owner string) ([]pet.Pet, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+petColumns+` FROM pets WHERE owner = $1 ORDER BY name, id`,
		pet.NormalizeOwner(owner),
	)
	if err != nil {
		return nil, fmt.Errorf("listing pets: %w", err)
	}
	pets, err := pgx.CollectRows(rows, scanPet)
	if err != nil {
		return nil, fmt.Errorf("scanning pets: %w", err)
	}
	return pets, nil
}

// Get implements pet.Registry.
func (r *PetRepository) Get(ctx context.Context, id string) (pet.Pet, error) {
	rows, err := r.db.Query(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	if err != nil {
		return pet.Pet{}, fmt.Errorf("querying pet: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPet)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pet.Pet{}, pet.ErrPetNotFound
		}
		return pet.Pet{}, fmt.Errorf("scanning pet: %w", err)
	}
	return p, nil
}

// Create implements pet.Registry.
//
// Postcondition: Returns pet.ErrPetExists when the ID is taken.
func (r *PetRepository) Create(ctx context.Context, p pet.Pet) (pet.Pet, error) {
	p.Owner = pet.NormalizeOwner(p.Owner)
	if err := p.Validate(); err != nil {
		return pet.Pet{}, err
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO pets (`+petColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Owner, p.Name, p.Hunger, p.Happiness, p.Stage, p.BirthMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return pet.Pet{}, fmt.Errorf("%w: %q", pet.ErrPetExists, p.ID)
		}
		return pet.Pet{}, fmt.Errorf("inserting pet: %w", err)
	}
	return p, nil
}

// Tend implements pet.Registry. The row is locked for the read-modify-write so
// concurrent care actions on one pet apply in sequence.
func (r *PetRepository) Tend(ctx context.Context, owner, id string, c pet.Care) (pet.Pet, error) {
	var out pet.Pet
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return fmt.Errorf("locking pet: %w", err)
		}
		p, err := pgx.CollectExactlyOneRow(rows, scanPet)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pet.ErrPetNotFound
			}
			return fmt.Errorf("scanning pet: %w", err)
		}
		next, err := pet.Tend(p, owner, c)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE pets SET hunger = $2, happiness = $3, stage = $4 WHERE id = $1`,
			next.ID, next.Hunger, next.Happiness, next.Stage,
		); err != nil {
			return fmt.Errorf("updating pet: %w", err)
		}
		out = next
		return nil
	})
	if err != nil {
		return pet.Pet{}, err
	}
	return out, nil
}

// Upsert inserts p or refreshes its stats when it already exists. It is used
// when importing rosters, where pet stats change between imports.
func (r *PetRepository) Upsert(ctx context.Context, pets []pet.Pet) error {
	for _, p := range pets {
		p.Owner = pet.NormalizeOwner(p.Owner)
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, p := range pets {
			_, err := tx.Exec(ctx,
				`INSERT INTO pets (`+petColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (id) DO UPDATE SET
				   owner = EXCLUDED.owner, name = EXCLUDED.name,
				   hunger = EXCLUDED.hunger, happiness = EXCLUDED.happiness,
				   stage = EXCLUDED.stage, birth_ms = EXCLUDED.birth_ms`,
				p.ID, pet.NormalizeOwner(p.Owner), p.Name, p.Hunger, p.Happiness, p.Stage, p.BirthMs,
			)
			if err != nil {
				return fmt.Errorf("upserting pet %q: %w", p.ID, err)
			}
		}
		return nil
	})
}

func scanPet(row pgx.CollectableRow) (pet.Pet, error) {
	var p pet.Pet
	err := row.Scan(&p.ID, &p.Owner, &p.Name, &p.Hunger, &p.Happiness, &p.Stage, &p.BirthMs)
	return p, err
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/onegotchi/arena/internal/game/pet"
)

var (
	// ErrTrainerNotFound is returned when a trainer lookup yields no results.
	ErrTrainerNotFound = errors.New("trainer not found")
	// ErrTrainerExists is returned when registering an address twice.
	ErrTrainerExists = errors.New("trainer already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Trainer is a registered wallet address allowed to battle.
type Trainer struct {
	ID           int64
	Address      string
	PasswordHash string
	CreatedAt    time.Time
}

// TrainerRepository provides trainer account persistence.
type TrainerRepository struct {
	db *pgxpool.Pool
}

// NewTrainerRepository creates a TrainerRepository backed by db.
func NewTrainerRepository(db *pgxpool.Pool) *TrainerRepository {
	return &TrainerRepository{db: db}
}

// Register stores a new trainer with a bcrypt-hashed password. The address is
// normalized the same way pet owners are.
//
// Precondition: address and password are non-empty.
// Postcondition: Returns the stored Trainer, or ErrTrainerExists if the address is taken.
func (r *TrainerRepository) Register(ctx context.Context, address, password string) (Trainer, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Trainer{}, fmt.Errorf("hashing password: %w", err)
	}

	var t Trainer
	err = r.db.QueryRow(ctx,
		`INSERT INTO trainers (address, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, address, password_hash, created_at`,
		pet.NormalizeOwner(address), hash,
	).Scan(&t.ID, &t.Address, &t.PasswordHash, &t.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return Trainer{}, ErrTrainerExists
		}
		return Trainer{}, fmt.Errorf("inserting trainer: %w", err)
	}
	return t, nil
}

// Authenticate verifies credentials and returns the matching trainer.
//
// Postcondition: Returns ErrTrainerNotFound for an unknown address and
// ErrInvalidCredentials for a wrong password.
func (r *TrainerRepository) Authenticate(ctx context.Context, address, password string) (Trainer, error) {
	t, err := r.GetByAddress(ctx, address)
	if err != nil {
		return Trainer{}, err
	}
	if !CheckPassword(password, t.PasswordHash) {
		return Trainer{}, ErrInvalidCredentials
	}
	return t, nil
}

// GetByAddress retrieves a trainer by wallet address.
func (r *TrainerRepository) GetByAddress(ctx context.Context, address string) (Trainer, error) {
	var t Trainer
	err := r.db.QueryRow(ctx,
		`SELECT id, address, password_hash, created_at
		 FROM trainers WHERE address = $1`,
		pet.NormalizeOwner(address),
	).Scan(&t.ID, &t.Address, &t.PasswordHash, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trainer{}, ErrTrainerNotFound
		}
		return Trainer{}, fmt.Errorf("querying trainer: %w", err)
	}
	return t, nil
}

// HashPassword creates a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

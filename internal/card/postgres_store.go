package card

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists cards in PostgreSQL. Update locks the row with
// SELECT ... FOR UPDATE so precondition checks and the mutation commit as a
// single transaction.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a card record.
func (s *PostgresStore) Create(ctx context.Context, card Card) error {
	cardID, err := uuid.Parse(card.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(card.Owner)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO cards (id, owner_id, balance, spending_limit, amount_spent, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cardID, ownerID, int64(card.Balance), int64(card.SpendingLimit), int64(card.AmountSpent), card.Active, card.CreatedAt.UTC())
	return err
}

// Get fetches a card by identifier.
func (s *PostgresStore) Get(ctx context.Context, id string) (Card, error) {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return Card{}, ErrCardNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, owner_id, balance, spending_limit, amount_spent, is_active, created_at
        FROM cards WHERE id = $1`, cardID)
	return scanCard(row)
}

// Update applies fn to the locked row and persists the result, or rolls
// back when fn aborts.
func (s *PostgresStore) Update(ctx context.Context, id string, fn func(*Card) error) (Card, error) {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return Card{}, ErrCardNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Card{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT id, owner_id, balance, spending_limit, amount_spent, is_active, created_at
        FROM cards WHERE id = $1 FOR UPDATE`, cardID)
	card, err := scanCard(row)
	if err != nil {
		return Card{}, err
	}

	if err := fn(&card); err != nil {
		return Card{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE cards SET balance = $2, spending_limit = $3, amount_spent = $4, is_active = $5
        WHERE id = $1`,
		cardID, int64(card.Balance), int64(card.SpendingLimit), int64(card.AmountSpent), card.Active); err != nil {
		return Card{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Card{}, err
	}

	return card, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (Card, error) {
	var (
		c         Card
		idVal     uuid.UUID
		ownerID   uuid.UUID
		balance   int64
		limit     int64
		spent     int64
		createdAt time.Time
	)
	if err := row.Scan(&idVal, &ownerID, &balance, &limit, &spent, &c.Active, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Card{}, ErrCardNotFound
		}
		return Card{}, err
	}
	c.ID = idVal.String()
	c.Owner = ownerID.String()
	c.Balance = uint64(balance)
	c.SpendingLimit = uint64(limit)
	c.AmountSpent = uint64(spent)
	c.CreatedAt = createdAt.UTC()
	return c, nil
}

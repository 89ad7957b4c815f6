package card

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cardledger/cardledger/internal/event"
)

// Service implements the card ledger engine: one method per operation.
// Every mutating operation runs its precondition checks and its mutation
// inside a single Store.Update unit, so a call either commits fully or
// aborts with no observable change. Precondition order within each
// operation is part of the external contract: the first violated check
// determines the reported error.
type Service struct {
	store   Store
	emitter event.Emitter
	logger  *slog.Logger
}

// NewService builds a card service instance.
func NewService(store Store, emitter event.Emitter, logger *slog.Logger) *Service {
	return &Service{store: store, emitter: emitter, logger: logger}
}

// Create provisions a new active card owned by caller with zero balance,
// zero spent, and the supplied spending limit.
func (s *Service) Create(ctx context.Context, spendingLimit uint64, caller string) (Card, error) {
	if _, err := uuid.Parse(caller); err != nil {
		return Card{}, err
	}

	card := Card{
		ID:            uuid.NewString(),
		Owner:         caller,
		SpendingLimit: spendingLimit,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.Create(ctx, card); err != nil {
		return Card{}, err
	}

	s.emit(ctx, event.Event{
		Kind:          event.KindCreated,
		CardID:        card.ID,
		Owner:         card.Owner,
		SpendingLimit: card.SpendingLimit,
	})

	return card, nil
}

// Deposit adds an already-isolated token amount to the card balance. The
// card must belong to the caller and be active.
func (s *Service) Deposit(ctx context.Context, id string, amount uint64, caller string) (Card, error) {
	updated, err := s.store.Update(ctx, id, func(c *Card) error {
		if err := c.authorize(caller); err != nil {
			return err
		}
		if !c.Active {
			return ErrInactiveCard
		}
		if amount > math.MaxUint64-c.Balance {
			return ErrAmountOverflow
		}
		c.Balance += amount
		return nil
	})
	if err != nil {
		return Card{}, err
	}

	s.emit(ctx, event.Event{
		Kind:       event.KindDeposited,
		CardID:     updated.ID,
		Amount:     amount,
		NewBalance: updated.Balance,
	})

	return updated, nil
}

// Spend moves amount to recipient through the limit-tracked path. Checks
// run in contract order: owner, active, balance, then spending limit. On
// success the cumulative amount spent grows by amount.
func (s *Service) Spend(ctx context.Context, id string, amount uint64, recipient, caller string) (Card, error) {
	if _, err := uuid.Parse(recipient); err != nil {
		return Card{}, ErrInvalidRecipient
	}

	updated, err := s.store.Update(ctx, id, func(c *Card) error {
		if err := c.authorize(caller); err != nil {
			return err
		}
		if !c.Active {
			return ErrInactiveCard
		}
		if amount > c.Balance {
			return ErrInsufficientBalance
		}
		// The limit may sit below the running total after an owner lowered
		// it; any tracked spend is then blocked until the limit is raised.
		if c.AmountSpent > c.SpendingLimit || amount > c.SpendingLimit-c.AmountSpent {
			return ErrExceedsSpendingLimit
		}
		c.Balance -= amount
		c.AmountSpent += amount
		return nil
	})
	if err != nil {
		return Card{}, err
	}

	s.emit(ctx, event.Event{
		Kind:       event.KindSpent,
		CardID:     updated.ID,
		Amount:     amount,
		NewBalance: updated.Balance,
		TotalSpent: updated.AmountSpent,
	})

	return updated, nil
}

// SpendToOwner is Spend with the caller as recipient.
func (s *Service) SpendToOwner(ctx context.Context, id string, amount uint64, caller string) (Card, error) {
	return s.Spend(ctx, id, amount, caller, caller)
}

// DirectTransfer moves amount to recipient without touching the cumulative
// amount spent. This path deliberately bypasses the spending-limit
// accounting; the limit is advisory for it.
func (s *Service) DirectTransfer(ctx context.Context, id string, amount uint64, recipient, caller string) (Card, error) {
	if _, err := uuid.Parse(recipient); err != nil {
		return Card{}, ErrInvalidRecipient
	}

	updated, err := s.store.Update(ctx, id, func(c *Card) error {
		if err := c.authorize(caller); err != nil {
			return err
		}
		if !c.Active {
			return ErrInactiveCard
		}
		if amount > c.Balance {
			return ErrInsufficientBalance
		}
		c.Balance -= amount
		return nil
	})
	if err != nil {
		return Card{}, err
	}

	s.emit(ctx, event.Event{
		Kind:       event.KindDirectTransferred,
		CardID:     updated.ID,
		Recipient:  recipient,
		Amount:     amount,
		NewBalance: updated.Balance,
	})

	return updated, nil
}

// Withdraw returns amount to the owner. It requires ownership and balance
// only: a deactivated card can still be drained by its owner. No event is
// emitted for withdrawals.
func (s *Service) Withdraw(ctx context.Context, id string, amount uint64, caller string) (Card, error) {
	return s.store.Update(ctx, id, func(c *Card) error {
		if err := c.authorize(caller); err != nil {
			return err
		}
		if amount > c.Balance {
			return ErrInsufficientBalance
		}
		c.Balance -= amount
		return nil
	})
}

// Deactivate marks the card inactive. Idempotent.
func (s *Service) Deactivate(ctx context.Context, id, caller string) (Card, error) {
	return s.setActive(ctx, id, caller, false)
}

// Reactivate marks the card active. Idempotent.
func (s *Service) Reactivate(ctx context.Context, id, caller string) (Card, error) {
	return s.setActive(ctx, id, caller, true)
}

func (s *Service) setActive(ctx context.Context, id, caller string, active bool) (Card, error) {
	return s.store.Update(ctx, id, func(c *Card) error {
		if err := c.authorize(caller); err != nil {
			return err
		}
		c.Active = active
		return nil
	})
}

// UpdateSpendingLimit replaces the spending limit unconditionally. Setting
// it below the current amount spent is valid and blocks further
// limit-tracked spends until raised.
func (s *Service) UpdateSpendingLimit(ctx context.Context, id string, newLimit uint64, caller string) (Card, error) {
	return s.store.Update(ctx, id, func(c *Card) error {
		if err := c.authorize(caller); err != nil {
			return err
		}
		c.SpendingLimit = newLimit
		return nil
	})
}

// Info returns the card's public read projection. No authorization check.
func (s *Service) Info(ctx context.Context, id string) (Info, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return Info{}, err
	}
	return Info{
		CardID:        c.ID,
		Owner:         c.Owner,
		Balance:       c.Balance,
		SpendingLimit: c.SpendingLimit,
		AmountSpent:   c.AmountSpent,
		Active:        c.Active,
	}, nil
}

// emit delivers an event after a committed mutation. Delivery is best
// effort: a failed emit never rolls back the state change.
func (s *Service) emit(ctx context.Context, e event.Event) {
	if s.emitter == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if err := s.emitter.Emit(ctx, e); err != nil && s.logger != nil {
		s.logger.Warn("emit card event", "kind", e.Kind, "card_id", e.CardID, "error", err)
	}
}

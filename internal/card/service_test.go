package card

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cardledger/cardledger/internal/event"
	"github.com/cardledger/cardledger/internal/logging"
)

func newTestService() (*Service, *event.Recorder) {
	rec := &event.Recorder{}
	return NewService(NewMemoryStore(), rec, logging.Discard()), rec
}

func TestCreateDefaults(t *testing.T) {
	svc, rec := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	require.Equal(t, owner, c.Owner)
	require.EqualValues(t, 0, c.Balance)
	require.EqualValues(t, 0, c.AmountSpent)
	require.EqualValues(t, 1_000, c.SpendingLimit)
	require.True(t, c.Active)

	events := rec.Events()
	require.Len(t, events, 1)
	require.Equal(t, event.KindCreated, events[0].Kind)
	require.Equal(t, c.ID, events[0].CardID)
	require.Equal(t, owner, events[0].Owner)
	require.EqualValues(t, 1_000, events[0].SpendingLimit)
}

func TestDepositThenSpend(t *testing.T) {
	svc, rec := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	recipient := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)

	c, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)
	require.EqualValues(t, 500, c.Balance)

	c, err = svc.Spend(ctx, c.ID, 200, recipient, owner)
	require.NoError(t, err)
	require.EqualValues(t, 300, c.Balance)
	require.EqualValues(t, 200, c.AmountSpent)

	events := rec.Events()
	require.Len(t, events, 3)
	require.Equal(t, event.KindDeposited, events[1].Kind)
	require.EqualValues(t, 500, events[1].Amount)
	require.EqualValues(t, 500, events[1].NewBalance)
	require.Equal(t, event.KindSpent, events[2].Kind)
	require.EqualValues(t, 200, events[2].Amount)
	require.EqualValues(t, 300, events[2].NewBalance)
	require.EqualValues(t, 200, events[2].TotalSpent)
}

func TestSpendPreconditionOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	stranger := uuid.NewString()
	recipient := uuid.NewString()

	c, err := svc.Create(ctx, 100, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 50, owner)
	require.NoError(t, err)

	// Owner check fires first, even when every later check would also fail.
	_, err = svc.Deactivate(ctx, c.ID, owner)
	require.NoError(t, err)
	_, err = svc.Spend(ctx, c.ID, 10_000, recipient, stranger)
	require.ErrorIs(t, err, ErrNotOwner)

	// Activity check fires before balance and limit.
	_, err = svc.Spend(ctx, c.ID, 10_000, recipient, owner)
	require.ErrorIs(t, err, ErrInactiveCard)

	_, err = svc.Reactivate(ctx, c.ID, owner)
	require.NoError(t, err)

	// 200 exceeds both the balance of 50 and the limit of 100; the balance
	// check reports first.
	_, err = svc.Spend(ctx, c.ID, 200, recipient, owner)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// With balance satisfied, the limit check reports last.
	_, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)
	_, err = svc.Spend(ctx, c.ID, 200, recipient, owner)
	require.ErrorIs(t, err, ErrExceedsSpendingLimit)
}

func TestSpendOverLimitLeavesStateUnchanged(t *testing.T) {
	svc, rec := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	recipient := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 2_000, owner)
	require.NoError(t, err)

	_, err = svc.Spend(ctx, c.ID, 1_001, recipient, owner)
	require.ErrorIs(t, err, ErrExceedsSpendingLimit)

	info, err := svc.Info(ctx, c.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2_000, info.Balance)
	require.EqualValues(t, 0, info.AmountSpent)

	for _, e := range rec.Events() {
		require.NotEqual(t, event.KindSpent, e.Kind)
	}
}

func TestSpendInsufficientBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)

	_, err = svc.Spend(ctx, c.ID, 600, uuid.NewString(), owner)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	info, err := svc.Info(ctx, c.ID)
	require.NoError(t, err)
	require.EqualValues(t, 500, info.Balance)
}

func TestActivityGating(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	recipient := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, c.ID, owner)
	require.NoError(t, err)

	_, err = svc.Spend(ctx, c.ID, 100, recipient, owner)
	require.ErrorIs(t, err, ErrInactiveCard)
	_, err = svc.Deposit(ctx, c.ID, 100, owner)
	require.ErrorIs(t, err, ErrInactiveCard)
	_, err = svc.DirectTransfer(ctx, c.ID, 100, recipient, owner)
	require.ErrorIs(t, err, ErrInactiveCard)

	// Limit updates and toggles stay available while inactive.
	_, err = svc.UpdateSpendingLimit(ctx, c.ID, 2_000, owner)
	require.NoError(t, err)

	_, err = svc.Reactivate(ctx, c.ID, owner)
	require.NoError(t, err)
	updated, err := svc.Spend(ctx, c.ID, 100, recipient, owner)
	require.NoError(t, err)
	require.EqualValues(t, 400, updated.Balance)
}

func TestWithdrawIgnoresActivity(t *testing.T) {
	svc, rec := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, c.ID, owner)
	require.NoError(t, err)

	updated, err := svc.Withdraw(ctx, c.ID, 200, owner)
	require.NoError(t, err)
	require.EqualValues(t, 300, updated.Balance)
	require.EqualValues(t, 0, updated.AmountSpent)

	// Withdrawals emit nothing.
	require.Len(t, rec.Events(), 2)

	_, err = svc.Withdraw(ctx, c.ID, 400, owner)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestDirectTransferBypassesLimit(t *testing.T) {
	svc, rec := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	recipient := uuid.NewString()

	c, err := svc.Create(ctx, 100, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)

	// 400 is far past the limit of 100 and still goes through untracked.
	updated, err := svc.DirectTransfer(ctx, c.ID, 400, recipient, owner)
	require.NoError(t, err)
	require.EqualValues(t, 100, updated.Balance)
	require.EqualValues(t, 0, updated.AmountSpent)

	events := rec.Events()
	last := events[len(events)-1]
	require.Equal(t, event.KindDirectTransferred, last.Kind)
	require.Equal(t, recipient, last.Recipient)
	require.EqualValues(t, 400, last.Amount)
	require.EqualValues(t, 100, last.NewBalance)

	// The tracked path continues to honor the limit.
	_, err = svc.Spend(ctx, c.ID, 100, recipient, owner)
	require.NoError(t, err)
	_, err = svc.Spend(ctx, c.ID, 1, recipient, owner)
	require.ErrorIs(t, err, ErrExceedsSpendingLimit)
}

func TestUpdateSpendingLimit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	recipient := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Spend(ctx, c.ID, 300, recipient, owner)
	require.NoError(t, err)

	updated, err := svc.UpdateSpendingLimit(ctx, c.ID, 2_000, owner)
	require.NoError(t, err)
	require.EqualValues(t, 2_000, updated.SpendingLimit)
	require.EqualValues(t, 700, updated.Balance)
	require.EqualValues(t, 300, updated.AmountSpent)

	// Lowering below the running total is valid and blocks tracked spends.
	_, err = svc.UpdateSpendingLimit(ctx, c.ID, 100, owner)
	require.NoError(t, err)
	_, err = svc.Spend(ctx, c.ID, 1, recipient, owner)
	require.ErrorIs(t, err, ErrExceedsSpendingLimit)

	// The untracked path is unaffected.
	_, err = svc.DirectTransfer(ctx, c.ID, 100, recipient, owner)
	require.NoError(t, err)

	// Raising it again unblocks the tracked path.
	_, err = svc.UpdateSpendingLimit(ctx, c.ID, 500, owner)
	require.NoError(t, err)
	_, err = svc.Spend(ctx, c.ID, 100, recipient, owner)
	require.NoError(t, err)
}

func TestSpendToOwnerDelegates(t *testing.T) {
	svc, rec := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)

	updated, err := svc.SpendToOwner(ctx, c.ID, 200, owner)
	require.NoError(t, err)
	require.EqualValues(t, 300, updated.Balance)
	require.EqualValues(t, 200, updated.AmountSpent)

	events := rec.Events()
	require.Equal(t, event.KindSpent, events[len(events)-1].Kind)
}

func TestNonOwnerMutationsRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	stranger := uuid.NewString()
	recipient := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, c.ID, 100, stranger)
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Spend(ctx, c.ID, 100, recipient, stranger)
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.DirectTransfer(ctx, c.ID, 100, recipient, stranger)
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Withdraw(ctx, c.ID, 100, stranger)
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Deactivate(ctx, c.ID, stranger)
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Reactivate(ctx, c.ID, stranger)
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.UpdateSpendingLimit(ctx, c.ID, 9_000, stranger)
	require.ErrorIs(t, err, ErrNotOwner)

	info, err := svc.Info(ctx, c.ID)
	require.NoError(t, err)
	require.EqualValues(t, 500, info.Balance)
	require.EqualValues(t, 0, info.AmountSpent)
	require.EqualValues(t, 1_000, info.SpendingLimit)
	require.True(t, info.Active)
}

func TestTogglesAreIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		updated, err := svc.Deactivate(ctx, c.ID, owner)
		require.NoError(t, err)
		require.False(t, updated.Active)
	}
	for i := 0; i < 2; i++ {
		updated, err := svc.Reactivate(ctx, c.ID, owner)
		require.NoError(t, err)
		require.True(t, updated.Active)
	}
}

func TestDepositOverflowGuard(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()

	c, err := svc.Create(ctx, 0, owner)
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, c.ID, math.MaxUint64, owner)
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, c.ID, 1, owner)
	require.ErrorIs(t, err, ErrAmountOverflow)

	info, err := svc.Info(ctx, c.ID)
	require.NoError(t, err)
	require.EqualValues(t, uint64(math.MaxUint64), info.Balance)
}

func TestBalanceConservation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	recipient := uuid.NewString()

	c, err := svc.Create(ctx, 10_000, owner)
	require.NoError(t, err)

	deposits := []uint64{1_000, 2_500, 400}
	for _, amt := range deposits {
		_, err = svc.Deposit(ctx, c.ID, amt, owner)
		require.NoError(t, err)
	}

	_, err = svc.Spend(ctx, c.ID, 700, recipient, owner)
	require.NoError(t, err)
	_, err = svc.DirectTransfer(ctx, c.ID, 300, recipient, owner)
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, c.ID, 150, owner)
	require.NoError(t, err)

	info, err := svc.Info(ctx, c.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1_000+2_500+400-700-300-150, info.Balance)
	require.EqualValues(t, 700, info.AmountSpent)
}

func TestInfoUnknownCard(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Info(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrCardNotFound)
}

func TestSpendInvalidRecipient(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.NewString()

	c, err := svc.Create(ctx, 1_000, owner)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, c.ID, 500, owner)
	require.NoError(t, err)

	_, err = svc.Spend(ctx, c.ID, 100, "not-an-id", owner)
	require.ErrorIs(t, err, ErrInvalidRecipient)
	_, err = svc.DirectTransfer(ctx, c.ID, 100, "not-an-id", owner)
	require.ErrorIs(t, err, ErrInvalidRecipient)
}

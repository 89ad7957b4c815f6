package card

import "context"

// Store persists card records keyed by id.
//
// Update applies fn to the current row as one atomic unit: every
// precondition check and mutation runs inside fn while the store holds the
// row exclusively, and the mutated card is committed only when fn returns
// nil. A non-nil error from fn aborts the update with no observable change.
type Store interface {
	Create(ctx context.Context, card Card) error
	Get(ctx context.Context, id string) (Card, error)
	Update(ctx context.Context, id string, fn func(*Card) error) (Card, error)
}

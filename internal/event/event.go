package event

import (
	"context"
	"strconv"
	"time"
)

const (
	// KindCreated indicates a new card was provisioned.
	KindCreated = "created"
	// KindDeposited indicates funds were added to a card.
	KindDeposited = "deposited"
	// KindSpent indicates a limit-tracked spend left a card.
	KindSpent = "spent"
	// KindDirectTransferred indicates funds left a card outside the
	// spending-limit accounting.
	KindDirectTransferred = "direct_transferred"
)

// Event is one notification record emitted after a successful mutating
// card operation, consumed by the external history/indexing collaborator.
// Which fields are populated depends on Kind.
type Event struct {
	Kind          string
	CardID        string
	Owner         string
	Recipient     string
	Amount        uint64
	NewBalance    uint64
	TotalSpent    uint64
	SpendingLimit uint64
	At            time.Time
}

// Emitter delivers card events to downstream systems.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

// Fields returns the wire payload for the event. Each kind carries a fixed
// field set; extra struct fields are dropped rather than serialized empty.
func (e Event) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"kind":    e.Kind,
		"card_id": e.CardID,
		"at":      e.At.UTC().Format(time.RFC3339Nano),
	}
	switch e.Kind {
	case KindCreated:
		fields["owner"] = e.Owner
		fields["spending_limit"] = strconv.FormatUint(e.SpendingLimit, 10)
	case KindDeposited:
		fields["amount"] = strconv.FormatUint(e.Amount, 10)
		fields["new_balance"] = strconv.FormatUint(e.NewBalance, 10)
	case KindSpent:
		fields["amount"] = strconv.FormatUint(e.Amount, 10)
		fields["new_balance"] = strconv.FormatUint(e.NewBalance, 10)
		fields["total_spent"] = strconv.FormatUint(e.TotalSpent, 10)
	case KindDirectTransferred:
		fields["recipient"] = e.Recipient
		fields["amount"] = strconv.FormatUint(e.Amount, 10)
		fields["new_balance"] = strconv.FormatUint(e.NewBalance, 10)
	}
	return fields
}

package card

import "time"

// Card is the ledger record for a single virtual prepaid card. All amounts
// are denominated in the token's smallest indivisible unit. Owner is fixed
// at creation; there is no transfer-of-ownership operation.
type Card struct {
	ID            string
	Owner         string
	Balance       uint64
	SpendingLimit uint64
	AmountSpent   uint64
	Active        bool
	CreatedAt     time.Time
}

// Info is the read projection of a card, served to any caller.
type Info struct {
	CardID        string
	Owner         string
	Balance       uint64
	SpendingLimit uint64
	AmountSpent   uint64
	Active        bool
}

// authorize is the single ownership predicate shared by every gated
// operation. Which further checks follow it differs per operation.
func (c *Card) authorize(caller string) error {
	if caller != c.Owner {
		return ErrNotOwner
	}
	return nil
}

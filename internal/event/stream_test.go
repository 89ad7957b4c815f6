package event

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupStream(t *testing.T) (*StreamEmitter, *redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return NewStreamEmitter(client, "card:events"), client, cleanup
}

func TestStreamEmitterAppendsSpent(t *testing.T) {
	emitter, client, cleanup := setupStream(t)
	defer cleanup()
	ctx := context.Background()

	err := emitter.Emit(ctx, Event{
		Kind:       KindSpent,
		CardID:     "card-1",
		Amount:     250,
		NewBalance: 750,
		TotalSpent: 250,
		At:         time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	entries, err := client.XRange(ctx, "card:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	values := entries[0].Values
	if values["kind"] != "spent" || values["card_id"] != "card-1" {
		t.Fatalf("unexpected entry: %+v", values)
	}
	if values["amount"] != "250" || values["new_balance"] != "750" || values["total_spent"] != "250" {
		t.Fatalf("unexpected amounts: %+v", values)
	}
	if _, ok := values["recipient"]; ok {
		t.Fatalf("spent record must not carry a recipient: %+v", values)
	}
}

func TestStreamEmitterFieldSetsPerKind(t *testing.T) {
	emitter, client, cleanup := setupStream(t)
	defer cleanup()
	ctx := context.Background()

	events := []Event{
		{Kind: KindCreated, CardID: "c", Owner: "o", SpendingLimit: 1000, At: time.Now()},
		{Kind: KindDeposited, CardID: "c", Amount: 500, NewBalance: 500, At: time.Now()},
		{Kind: KindDirectTransferred, CardID: "c", Recipient: "r", Amount: 100, NewBalance: 400, At: time.Now()},
	}
	for _, e := range events {
		if err := emitter.Emit(ctx, e); err != nil {
			t.Fatalf("emit %s: %v", e.Kind, err)
		}
	}

	entries, err := client.XRange(ctx, "card:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	created := entries[0].Values
	if created["owner"] != "o" || created["spending_limit"] != "1000" {
		t.Fatalf("created record: %+v", created)
	}
	if _, ok := created["amount"]; ok {
		t.Fatalf("created record must not carry an amount: %+v", created)
	}

	deposited := entries[1].Values
	if deposited["amount"] != "500" || deposited["new_balance"] != "500" {
		t.Fatalf("deposited record: %+v", deposited)
	}

	transferred := entries[2].Values
	if transferred["recipient"] != "r" || transferred["amount"] != "100" || transferred["new_balance"] != "400" {
		t.Fatalf("direct_transferred record: %+v", transferred)
	}
	if _, ok := transferred["total_spent"]; ok {
		t.Fatalf("direct_transferred record must not carry total_spent: %+v", transferred)
	}
}

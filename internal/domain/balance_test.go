package domain

import (
	"testing"
)

func TestBalance_CreditDebit(t *testing.T) {
	b := &Balance{Household: 7}

	b.Credit(10000, 1)
	if b.AmountPence != 10000 {
		t.Errorf("expected 10000, got %d", b.AmountPence)
	}

	b.Debit(3000, 2)
	if b.AmountPence != 7000 {
		t.Errorf("expected 7000, got %d", b.AmountPence)
	}
	if b.LastTick != 2 {
		t.Errorf("expected last tick 2, got %d", b.LastTick)
	}

	b.VerifyInvariant()
}

func TestBalance_CanAfford(t *testing.T) {
	b := &Balance{Household: 1, AmountPence: 500}
	if !b.CanAfford(500) {
		t.Error("should afford exact balance")
	}
	if b.CanAfford(501) {
		t.Error("should not afford more than balance")
	}
	if b.CanAfford(-1) {
		t.Error("negative amounts are never affordable")
	}
}

func TestBalance_InvariantPanic_NegativeAmount(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for negative amount")
		}
	}()

	b := &Balance{Household: 1, AmountPence: -1}
	b.VerifyInvariant()
}

func TestBalance_DebitPanic_Insufficient(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for insufficient balance")
		}
	}()

	b := &Balance{Household: 1, AmountPence: 50}
	b.Debit(100, 1) // Should panic
}

func TestBalanceBook(t *testing.T) {
	bb := NewBalanceBook()

	bb.Get(2).Credit(1000, 1)
	bb.Get(1).Credit(5000, 2)

	bb.VerifyAll()

	snap := bb.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(snap))
	}
	if snap[0].Household != 1 || snap[1].Household != 2 {
		t.Errorf("snapshot not ordered by household: %+v", snap)
	}
}

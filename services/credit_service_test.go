package services

import (
	"errors"
	"testing"
	"time"

	"github.com/hosteldesk/messmate/models"
)

func TestGrantOptOutCredit_Schedule(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	user := seedStudent(t, db)

	day := MidnightOf(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local))

	for _, meal := range models.MealTypes {
		if err := credits.GrantOptOutCredit(user.ID, meal, day); err != nil {
			t.Fatalf("grant %s: %v", meal, err)
		}
	}

	balance, err := credits.GetBalance(user.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 140 {
		t.Fatalf("want balance 140 (30+50+60), got %v", balance)
	}
}

func TestGrantOptOutCredit_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)

	day := MidnightOf(time.Now())
	if err := credits.GrantOptOutCredit(999, models.MealLunch, day); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("want ErrUnknownUser, got %v", err)
	}
	// A failed grant must not leave orphan ledger rows.
	if n := countTransactions(t, db, 999); n != 0 {
		t.Fatalf("orphan ledger entries: %d", n)
	}
}

func TestGetBalance_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)

	if _, err := credits.GetBalance(42); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("want ErrUnknownUser, got %v", err)
	}
}

func TestListTransactions_NewestFirstPaged(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	user := seedStudent(t, db)

	base := MidnightOf(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local))
	for i := 0; i < 5; i++ {
		if err := credits.GrantOptOutCredit(user.ID, models.MealLunch, base.AddDate(0, 0, i)); err != nil {
			t.Fatalf("grant %d: %v", i, err)
		}
	}

	txns, total, err := credits.ListTransactions(user.ID, 1, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("want total 5, got %d", total)
	}
	if len(txns) != 3 {
		t.Fatalf("want page of 3, got %d", len(txns))
	}

	seen := map[string]bool{}
	for _, txn := range txns {
		if txn.Amount != 50 {
			t.Fatalf("want lunch amount 50, got %v", txn.Amount)
		}
		if seen[txn.Reference] {
			t.Fatalf("duplicate reference %s", txn.Reference)
		}
		seen[txn.Reference] = true
	}

	rest, _, err := credits.ListTransactions(user.ID, 2, 3)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("want 2 remaining, got %d", len(rest))
	}
}

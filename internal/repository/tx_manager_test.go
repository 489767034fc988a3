package repository

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

func TestInTx(t *testing.T) {
	if InTx(context.Background()) {
		t.Error("background context reported an open transaction")
	}
	ctx := context.WithValue(context.Background(), txContextKey{}, &gorm.DB{})
	if !InTx(ctx) {
		t.Error("transaction on context not detected")
	}
}

func TestRunInTx_JoinsOpenTransaction(t *testing.T) {
	// A zero manager would panic if it tried to begin a new transaction.
	tm := &transactionManager{}
	outer := context.WithValue(context.Background(), txContextKey{}, &gorm.DB{})

	var seen context.Context
	if err := tm.RunInTx(outer, func(txCtx context.Context) error {
		seen = txCtx
		return nil
	}); err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
	if seen != outer {
		t.Error("nested call did not reuse the outer transaction context")
	}
}

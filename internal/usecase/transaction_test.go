package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anglerclubs/roster-api/internal/usecase"
)

func TestTransactionRunsInOrder(t *testing.T) {
	var calls []string

	txn := usecase.NewTransaction()
	txn.AddOperation("first", func(ctx context.Context) error {
		calls = append(calls, "first")
		return nil
	})
	txn.AddOperation("second", func(ctx context.Context) error {
		calls = append(calls, "second")
		return nil
	})

	assert.NoError(t, txn.Execute(context.Background()))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestTransactionCompensatesOnFailure(t *testing.T) {
	var calls []string

	txn := usecase.NewTransaction()
	txn.AddOperation("stage", func(ctx context.Context) error {
		calls = append(calls, "stage")
		return nil
	})
	txn.AddCompensation("unstage", func(ctx context.Context) error {
		calls = append(calls, "unstage")
		return nil
	})
	txn.AddOperation("finalize", func(ctx context.Context) error {
		return errors.New("boom")
	})

	err := txn.Execute(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "finalize")
	assert.Equal(t, []string{"stage", "unstage"}, calls)
}

func TestTransactionFirstOperationFailureSkipsCompensation(t *testing.T) {
	var compensated bool

	txn := usecase.NewTransaction()
	txn.AddOperation("stage", func(ctx context.Context) error {
		return errors.New("boom")
	})
	txn.AddCompensation("unstage", func(ctx context.Context) error {
		compensated = true
		return nil
	})

	assert.Error(t, txn.Execute(context.Background()))
	assert.False(t, compensated)
}

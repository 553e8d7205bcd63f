package surrealdb

import (
	"context"
	"testing"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/storage/storagetest"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) interfaces.StorageManager {
		db := testDB(t)
		require.NoError(t, defineSchema(context.Background(), db))
		return newManager(db, testLogger())
	})
}

func TestDefineSchema_Idempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	require.NoError(t, defineSchema(ctx, db))
	require.NoError(t, defineSchema(ctx, db))
}

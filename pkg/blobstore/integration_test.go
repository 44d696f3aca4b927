package blobstore

import (
	"context"
	"log"
	"os"
	"testing"

	"productivity-pal-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEnv() {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
}

func TestGormStoreIntegration(t *testing.T) {
	loadEnv()
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	store, err := NewGormStore(db)
	require.NoError(t, err)
	defer store.Close()

	roundTrip(t, store)
}

func TestRedisStoreIntegration(t *testing.T) {
	loadEnv()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	store, err := NewRedisStore(context.Background(), url)
	require.NoError(t, err)
	defer store.Close()

	roundTrip(t, store)
}

// roundTrip tolerates whatever a shared backend already holds.
func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	settings := []byte(`{"breakInterval":45,"breakDuration":5}`)
	require.NoError(t, s.Set(ctx, map[string][]byte{KeyBreakSettings: settings}))

	got, err := s.Get(ctx, KeyBreakSettings)
	require.NoError(t, err)
	assert.JSONEq(t, string(settings), string(got[KeyBreakSettings]))
}

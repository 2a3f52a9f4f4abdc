package testdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// SeedMentor inserts a verified mentor and returns its ID.
func SeedMentor(t *testing.T, db *bun.DB, email string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.NewRaw(
		"INSERT INTO mentors (full_name, email, password_hash, email_confirmed_at) VALUES (?, ?, ?, current_timestamp) RETURNING id",
		"Test Mentor", email, "not-a-real-hash",
	).Scan(context.Background(), &id)
	require.NoError(t, err)
	return id
}

// SeedBatch inserts an active batch owned by mentorID and returns its ID.
func SeedBatch(t *testing.T, db *bun.DB, mentorID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.NewRaw(
		"INSERT INTO batches (mentor_id, batch_name, department_name, section, semester) VALUES (?, ?, 'CSE', 'A', 'Fall') RETURNING id",
		mentorID, name,
	).Scan(context.Background(), &id)
	require.NoError(t, err)
	return id
}

package ratings

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// dryRunDB renders Postgres SQL without connecting.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=turfbook dbname=turfbook sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestUpsertConflictTargetsUniqueIndex(t *testing.T) {
	s, err := schema.Parse(&Rating{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx, ok := s.ParseIndexes()["idx_turf_ratings_unique"]
	require.True(t, ok)
	assert.Equal(t, "UNIQUE", idx.Class)

	var indexed []string
	for _, f := range idx.Fields {
		indexed = append(indexed, f.DBName)
	}
	var conflict []string
	for _, c := range upsertConflict.Columns {
		conflict = append(conflict, c.Name)
	}
	assert.Equal(t, indexed, conflict)
}

func TestUpsertSQL(t *testing.T) {
	stmt := dryRunDB(t).
		Clauses(upsertConflict).
		Create(&Rating{TurfID: 1, UserID: 2, BookingID: 3, Rating: 4, Feedback: "good grass"}).
		Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `INSERT INTO "turf_ratings"`)
	assert.Contains(t, sql, `ON CONFLICT ("turf_id","user_id","booking_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"rating"="excluded"."rating"`)
	assert.Contains(t, sql, `"feedback"="excluded"."feedback"`)
	assert.Contains(t, sql, `"updated_at"="excluded"."updated_at"`)
	assert.NotContains(t, sql, `"created_at"="excluded"."created_at"`)
}

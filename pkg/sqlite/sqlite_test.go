package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(DriverName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping())
	return db
}

func TestVecExtensionLoaded(t *testing.T) {
	db := openMemory(t)

	var version string
	require.NoError(t, db.QueryRow(`SELECT vec_version()`).Scan(&version))
	assert.NotEmpty(t, version)
}

func TestSerializeVector(t *testing.T) {
	b, err := SerializeVector([]float32{0.1, -0.2, 0.3, 1e-7})
	require.NoError(t, err)
	assert.Len(t, b, 16)
}

func TestCosineKNN(t *testing.T) {
	db := openMemory(t)

	_, err := db.Exec(`CREATE VIRTUAL TABLE items USING vec0(embedding float[3] distance_metric=cosine)`)
	require.NoError(t, err)

	for i, v := range [][]float32{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}, {-1, 0, 0}} {
		blob, err := SerializeVector(v)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO items (rowid, embedding) VALUES (?, ?)`, i+1, blob)
		require.NoError(t, err)
	}

	query, err := SerializeVector([]float32{1, 0, 0})
	require.NoError(t, err)

	rows, err := db.Query(`
		SELECT rowid, distance FROM items
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance`, query, 4)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int
	var dists []float64
	for rows.Next() {
		var id int
		var d float64
		require.NoError(t, rows.Scan(&id, &d))
		ids = append(ids, id)
		dists = append(dists, d)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []int{1, 3, 2, 4}, ids)
	assert.InDelta(t, 0, dists[0], 1e-6)
	assert.InDelta(t, 1, dists[2], 1e-6)
	assert.InDelta(t, 2, dists[3], 1e-6)
}

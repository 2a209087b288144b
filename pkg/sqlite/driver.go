package sqlite

import (
	"database/sql"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by this package.
// Every connection has sqlite-vec loaded (vec0 tables, vec_* functions).
const DriverName = "sqlite3_lobug"

func init() {
	sqlite_vec.Auto()

	sql.Register(DriverName, &sqlite3.SQLiteDriver{})
}

// SerializeVector packs v into the little-endian float32 blob sqlite-vec reads.
func SerializeVector(v []float32) ([]byte, error) {
	return sqlite_vec.SerializeFloat32(v)
}

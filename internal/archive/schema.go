package archive

import (
	"database/sql"

	"github.com/lhrsolar/curvetracer/internal/errors"
)

const createTablesSQL = `
   CREATE TABLE IF NOT EXISTS sweep_points (
       id          INTEGER PRIMARY KEY AUTOINCREMENT,
       recorded_at INTEGER NOT NULL,
       mtype       INTEGER NOT NULL CHECK (mtype BETWEEN 0 AND 3),
       sample_id   INTEGER NOT NULL,
       value_milli INTEGER NOT NULL
   );
   CREATE TABLE IF NOT EXISTS faults (
       id          INTEGER PRIMARY KEY AUTOINCREMENT,
       recorded_at INTEGER NOT NULL,
       code        INTEGER NOT NULL,
       context     INTEGER NOT NULL
   );`

const insertPointSQL = `
    INSERT INTO sweep_points (recorded_at, mtype, sample_id, value_milli)
    VALUES (?, ?, ?, ?)`

const insertFaultSQL = `
    INSERT INTO faults (recorded_at, code, context)
    VALUES (?, ?, ?)`

// initSchema creates the tables on first open.
func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	if _, err := db.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}

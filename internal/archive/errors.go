package archive

import "github.com/lhrsolar/curvetracer/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("archive_invalid_db_path")

	ErrSchemaInitFailed  = errors.ErrorCode("archive_schema_init_failed")
	ErrTransactionFailed = errors.ErrorCode("archive_transaction_failed")

	ErrStorageInit  = errors.ErrInitFailed
	ErrStorageClose = errors.ErrShutdownFailed
)

package archive

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lhrsolar/curvetracer/internal/errors"
	"github.com/lhrsolar/curvetracer/internal/logger"
	"github.com/lhrsolar/curvetracer/internal/protocol"
)

type row struct {
	at       int64
	fault    bool
	mt       protocol.MeasurementType
	sampleID uint32
	milli    int64
	code     protocol.FaultCode
	context  uint16
}

type repository struct {
	db     *sql.DB
	cfg    Config
	logger logger.Logger

	mu            sync.Mutex
	buffer        []row
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

// NewStore opens the sweep archive, or returns a no-op store when
// persistence is disabled.
func NewStore(cfg Config, log logger.Logger) (Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Sweep archive disabled, using no-op store")
		return &noopStore{}, nil
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaultBatchTimeout
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("batch_size", cfg.BatchSize).
		Int("batch_timeout", cfg.BatchTimeout).
		Msg("Sweep archive initialized")

	repo := &repository{
		db:            db,
		cfg:           cfg,
		logger:        log,
		buffer:        make([]row, 0, cfg.BatchSize),
		flushTicker:   time.NewTicker(time.Duration(cfg.BatchTimeout) * time.Second),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}
	go repo.flusher()

	return repo, nil
}

func (r *repository) SavePoint(mt protocol.MeasurementType, sampleID uint32, milli int64) {
	r.record(row{at: time.Now().Unix(), mt: mt, sampleID: sampleID, milli: milli})
}

func (r *repository) SaveFault(code protocol.FaultCode, context uint16) {
	r.record(row{at: time.Now().Unix(), fault: true, code: code, context: context})
	// A fault is terminal; push it to disk immediately.
	r.mu.Lock()
	r.flush()
	r.mu.Unlock()
}

func (r *repository) record(rw row) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, rw)
	if len(r.buffer) >= r.cfg.BatchSize {
		r.flush()
	}
}

func (r *repository) Close() error {
	errFactory := errors.New()

	close(r.shutdownChan)
	r.flushTicker.Stop()
	<-r.flushDoneChan

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	r.logger.Info().Msg("Sweep archive closed")

	return nil
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			r.flush()
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			r.flush()
			r.mu.Unlock()
			return
		}
	}
}

// flush writes the buffer in one transaction. Callers hold r.mu.
func (r *repository) flush() {
	if len(r.buffer) == 0 {
		return
	}

	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to begin archive transaction")
		return
	}

	for i := range r.buffer {
		rw := &r.buffer[i]
		if rw.fault {
			_, err = tx.Exec(insertFaultSQL, rw.at, int64(rw.code), int64(rw.context))
		} else {
			_, err = tx.Exec(insertPointSQL, rw.at, int64(rw.mt), int64(rw.sampleID), rw.milli)
		}
		if err != nil {
			r.logger.Error().Err(err).Msg("Failed to insert archive row")
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("Failed to roll back archive transaction")
			}
			return
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to commit archive transaction")
		return
	}

	r.logger.Debug().Int("rows", len(r.buffer)).Msg("Flushed sweep archive")
	r.buffer = r.buffer[:0]
}

type noopStore struct{}

func (*noopStore) SavePoint(protocol.MeasurementType, uint32, int64) {}
func (*noopStore) SaveFault(protocol.FaultCode, uint16)              {}
func (*noopStore) Close() error                                      { return nil }

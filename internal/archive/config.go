package archive

import "github.com/lhrsolar/curvetracer/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/curvetracer/sweeps.db"

	defaultBatchSize    = 32
	defaultBatchTimeout = 5 // seconds
)

type Config struct {
	DBPath       string
	Enabled      bool
	BatchSize    int
	BatchTimeout int
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		Enabled:      false,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}

	return nil
}

package config

import (
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lhrsolar/curvetracer/internal/errors"
	"github.com/rs/zerolog"
)

// Config holds the node's settings. Values are immutable after Load.
type Config struct {
	// Transports
	SerialPort   string `mapstructure:"serial_port"`
	BaudRate     int    `mapstructure:"baud_rate"`
	CANInterface string `mapstructure:"can_interface"`

	// Core timing, in milliseconds
	TickInterval int `mapstructure:"tick_interval"`
	SettleTime   int `mapstructure:"settle_time"`
	Cooldown     int `mapstructure:"cooldown"`

	// Sampling and queueing
	SubSamples   int `mapstructure:"sub_samples"`
	RingCapacity int `mapstructure:"ring_capacity"`
	QueueSize    int `mapstructure:"queue_size"`

	// Peripheral sysfs paths
	DACPath        string `mapstructure:"dac_path"`
	VoltageADCPath string `mapstructure:"voltage_adc_path"`
	CurrentADCPath string `mapstructure:"current_adc_path"`
	HeartbeatLED   string `mapstructure:"heartbeat_led"`
	ScanningLED    string `mapstructure:"scanning_led"`
	FaultLED       string `mapstructure:"fault_led"`

	// Subsystems
	Archive   bool   `mapstructure:"archive"`
	ArchiveDB string `mapstructure:"archive_db"`
	Broker    string `mapstructure:"broker"`

	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"`
}

// Load reads configuration from flags, environment and the config file,
// in descending precedence. The file is curvetracer.toml in /etc or the
// working directory unless CURVETRACER_CONFIG points elsewhere.
func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("curvetracerd", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.String("serial-port", "/dev/ttyACM0", "Serial command/result port")
	flags.Int("baud-rate", 19200, "Serial baud rate")
	flags.String("can-interface", "can0", "SocketCAN interface name")
	flags.Int("tick-interval", 100, "Poll tick interval in milliseconds")
	flags.Int("settle-time", 15, "Settle time after each control step in milliseconds")
	flags.Int("cooldown", 1000, "Cool-down between sweeps in milliseconds")
	flags.Int("sub-samples", 5, "Raw reads averaged into one sample")
	flags.Int("ring-capacity", 100, "Inbound serial ring capacity in bytes")
	flags.Int("queue-size", 100, "Dispatch queue depth")
	flags.String("dac-path", "", "IIO raw attribute of the control DAC")
	flags.String("voltage-adc-path", "", "IIO raw attribute of the voltage sense ADC")
	flags.String("current-adc-path", "", "IIO raw attribute of the current sense ADC")
	flags.String("heartbeat-led", "", "Sysfs value attribute of the heartbeat LED")
	flags.String("scanning-led", "", "Sysfs value attribute of the scanning LED")
	flags.String("fault-led", "", "Sysfs value attribute of the fault LED")
	flags.Bool("archive", false, "Persist sweep results to sqlite")
	flags.String("archive-db", "/var/lib/curvetracer/sweeps.db", "Sweep archive database path")
	flags.String("broker", "", "MQTT broker URL for the telemetry bridge (empty disables)")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	if path := os.Getenv("CURVETRACER_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("curvetracer")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("CURVETRACER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Flags use dashes, config keys use underscores. Flag defaults seed
	// viper so file and environment values can override them; a flag
	// given on the command line overrides everything.
	flags.VisitAll(func(f *pflag.Flag) {
		key := normalizeKey(f.Name)
		v.SetDefault(key, f.DefValue)
		if f.Changed {
			v.Set(key, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if config.Verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	return config, nil
}

// Validate rejects settings the tasks cannot run with.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.TickInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "tick_interval must be positive")
	}
	if c.RingCapacity < 8 {
		return errFactory.WithData(errors.ErrInvalidConfig, "ring_capacity must hold at least one frame")
	}
	if c.QueueSize <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "queue_size must be positive")
	}
	if c.BaudRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "baud_rate must be positive")
	}

	return nil
}

func normalizeKey(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '-' {
			out[i] = '_'
		} else {
			out[i] = name[i]
		}
	}

	return string(out)
}

package bench

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/benz9527/xwavl/lib/infra"
	"github.com/benz9527/xwavl/lib/xlog"
	"github.com/benz9527/xwavl/observability"
)

const (
	configName      = ".xwavl"
	configType      = "yaml"
	envPrefix       = "XWAVL"
	envKeySeparator = "_"
)

type KeyMode string

const (
	RandomKeys     KeyMode = "random"
	SequentialKeys KeyMode = "sequential"
	ReversedKeys   KeyMode = "reversed"
)

const (
	DefaultRepeats         = 1
	DefaultKeyMode         = RandomKeys
	DefaultWorkers         = 4
	DefaultLogLevel        = "info"
	DefaultLogEncoder      = "plaintext"
	DefaultMetricsExporter = "none"
	DefaultMetricsInterval = 10 * time.Second
)

var (
	// 10k to 100k nodes, step 10k.
	DefaultSizes   = []int{10000, 20000, 30000, 40000, 50000, 60000, 70000, 80000, 90000, 100000}
	DefaultArities = []int{2, 3, 4, 5}
)

var (
	ErrConfigInvalidSize    = errors.New("[bench] sizes must be positive")
	ErrConfigInvalidRepeats = errors.New("[bench] repeats must be positive")
	ErrConfigInvalidKeyMode = errors.New("[bench] unknown key mode")
	ErrConfigInvalidArity   = errors.New("[bench] heap arity must be at least 2")
	ErrConfigInvalidWorkers = errors.New("[bench] workers must be positive")
	ErrConfigInvalidEncoder = errors.New("[bench] unknown log encoder")
)

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
}

type MetricsConfig struct {
	Exporter string        `mapstructure:"exporter"`
	Addr     string        `mapstructure:"addr"`
	Interval time.Duration `mapstructure:"interval"`
}

// Config drives one bench run. Seed 0 picks a seed from the clock.
type Config struct {
	Sizes   []int         `mapstructure:"sizes"`
	Repeats int           `mapstructure:"repeats"`
	KeyMode KeyMode       `mapstructure:"key_mode"`
	Arities []int         `mapstructure:"arities"`
	Seed    uint64        `mapstructure:"seed"`
	Workers int           `mapstructure:"workers"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

func (cfg *Config) Validate() (err error) {
	if len(cfg.Sizes) == 0 {
		err = multierr.Append(err, ErrConfigInvalidSize)
	}
	for _, n := range cfg.Sizes {
		if n <= 0 {
			err = multierr.Append(err, infra.WrapErrorStackWithMessage(ErrConfigInvalidSize, "size"))
			break
		}
	}
	if cfg.Repeats <= 0 {
		err = multierr.Append(err, ErrConfigInvalidRepeats)
	}
	switch cfg.KeyMode {
	case RandomKeys, SequentialKeys, ReversedKeys:
	default:
		err = multierr.Append(err, infra.WrapErrorStackWithMessage(ErrConfigInvalidKeyMode, string(cfg.KeyMode)))
	}
	for _, d := range cfg.Arities {
		if d < 2 {
			err = multierr.Append(err, ErrConfigInvalidArity)
			break
		}
	}
	if cfg.Workers <= 0 {
		err = multierr.Append(err, ErrConfigInvalidWorkers)
	}
	if _, ok := xlog.ParseLogEncoder(cfg.Log.Encoder); !ok {
		err = multierr.Append(err, infra.WrapErrorStackWithMessage(ErrConfigInvalidEncoder, cfg.Log.Encoder))
	}
	if _, parseErr := observability.ParseMetricsExporterType(cfg.Metrics.Exporter); parseErr != nil {
		err = multierr.Append(err, parseErr)
	}
	return err
}

// Flag name to config key.
var flagKeys = map[string]string{
	"sizes":            "sizes",
	"repeats":          "repeats",
	"key-mode":         "key_mode",
	"arities":          "arities",
	"seed":             "seed",
	"workers":          "workers",
	"log-level":        "log.level",
	"log-encoder":      "log.encoder",
	"metrics":          "metrics.exporter",
	"metrics-addr":     "metrics.addr",
	"metrics-interval": "metrics.interval",
}

// LoadConfig merges flags, XWAVL_* env vars, the yaml config file and the
// defaults, in that priority. A missing config file is not an error
// unless configPath names it explicitly.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, infra.WrapErrorStackWithMessage(err, "bind flag "+name)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, infra.WrapErrorStackWithMessage(err, "read config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "unmarshal config")
	}
	cfg.KeyMode = KeyMode(strings.ToLower(strings.TrimSpace(string(cfg.KeyMode))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("sizes", DefaultSizes)
	v.SetDefault("repeats", DefaultRepeats)
	v.SetDefault("key_mode", string(DefaultKeyMode))
	v.SetDefault("arities", DefaultArities)
	v.SetDefault("seed", 0)
	v.SetDefault("workers", DefaultWorkers)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.encoder", DefaultLogEncoder)

	v.SetDefault("metrics.exporter", DefaultMetricsExporter)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.interval", DefaultMetricsInterval)
}

// RegisterFlags adds the bench flags to a cobra command flag set. The
// flag defaults are placeholders, the config defaults win over them.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.IntSlice("sizes", DefaultSizes, "tree and heap sizes to measure")
	flags.Int("repeats", DefaultRepeats, "runs per size")
	flags.String("key-mode", string(DefaultKeyMode), "key order: random, sequential or reversed")
	flags.IntSlice("arities", DefaultArities, "d-ary heap arities to measure")
	flags.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	flags.Int("workers", DefaultWorkers, "experiments run in parallel")
}

// RegisterGlobalFlags adds the logging and metrics flags.
func RegisterGlobalFlags(flags *pflag.FlagSet) {
	flags.String("log-level", DefaultLogLevel, "debug, info, warn or error")
	flags.String("log-encoder", DefaultLogEncoder, "json or plaintext")
	flags.String("metrics", DefaultMetricsExporter, "metrics exporter: none, stdout or prometheus")
	flags.String("metrics-addr", "", "prometheus /metrics listen address")
	flags.Duration("metrics-interval", DefaultMetricsInterval, "stdout exporter interval")
}

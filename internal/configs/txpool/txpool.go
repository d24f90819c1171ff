package txpool

import (
	"io/ioutil"
	"math/big"

	goversion "github.com/hashicorp/go-version"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/NomicFoundation/hardhat-sub012/core"
)

// TomlConfigVersion is the version written by Dump and accepted by Load.
const TomlConfigVersion = "1.0.0"

// Config contains all the configs user can set for running a transaction pool.
// Served as the bridge from the toml file and cli flags to core.TxPoolConfig.
type Config struct {
	Version   string
	Pool      PoolConfig
	Selection SelectionConfig
	Log       LogConfig
}

type PoolConfig struct {
	ChainID       uint64
	PriceBump     uint64 // percent
	Invalidation  string // "demote" or "drop"
	BlockGasLimit uint64
	MaxTxDataSize uint64
	ErrorSinkSize int
}

type SelectionConfig struct {
	Order   string // "priority" or "fifo"
	BaseFee string // decimal wei, empty for pre-London blocks
}

type LogConfig struct {
	Folder     string
	FileName   string
	RotateSize int
	Verbosity  int
	Context    *LogContext `toml:",omitempty"`
}

type LogContext struct {
	Name string
}

var defaultConfig = Config{
	Version: TomlConfigVersion,
	Pool: PoolConfig{
		ChainID:       core.DefaultTxPoolConfig.ChainID.Uint64(),
		PriceBump:     core.DefaultTxPoolConfig.PriceBump,
		Invalidation:  string(core.DefaultTxPoolConfig.Invalidation),
		BlockGasLimit: core.DefaultTxPoolConfig.BlockGasLimit,
		MaxTxDataSize: core.DefaultTxPoolConfig.MaxTxDataSize,
		ErrorSinkSize: core.DefaultTxPoolConfig.ErrorSinkSize,
	},
	Selection: SelectionConfig{
		Order:   string(core.PriorityOrder),
		BaseFee: "",
	},
	Log: LogConfig{
		Folder:     "./latest",
		FileName:   "txpool.log",
		RotateSize: 100,
		Verbosity:  3,
	},
}

// GetDefaultConfigCopy returns a copy of the default config.
func GetDefaultConfigCopy() Config {
	config := defaultConfig
	return config
}

// Load reads a toml config file. Keys missing from the file keep their
// default values.
func Load(file string) (Config, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes a toml config. Keys missing from b take their default values.
func Parse(b []byte) (Config, error) {
	confTree, err := toml.LoadBytes(b)
	if err != nil {
		return Config{}, errors.Wrap(err, "config file parse error")
	}
	confVersion, found := confTree.Get("Version").(string)
	if !found {
		return Config{}, errors.New("config file invalid - no version entry found")
	}
	if err := checkVersion(confVersion); err != nil {
		return Config{}, err
	}

	defBytes, err := toml.Marshal(defaultConfig)
	if err != nil {
		return Config{}, err
	}
	defTree, err := toml.LoadBytes(defBytes)
	if err != nil {
		return Config{}, err
	}
	fillMissing(confTree, defTree, nil)

	var config Config
	if err := confTree.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	if _, err := config.SelectionOrder(); err != nil {
		return Config{}, err
	}
	if _, err := config.BaseFee(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// checkVersion accepts files of the current major version that are not newer
// than this binary.
func checkVersion(confVersion string) error {
	ver, err := goversion.NewVersion(confVersion)
	if err != nil {
		return errors.Errorf("invalid or missing config file version - '%s'", confVersion)
	}
	current, _ := goversion.NewVersion(TomlConfigVersion)
	if ver.GreaterThan(current) || ver.Segments()[0] != current.Segments()[0] {
		return errors.Errorf("unrecognized config version - %s", confVersion)
	}
	return nil
}

// fillMissing copies every leaf of def that is absent from conf.
func fillMissing(conf, def *toml.Tree, path []string) {
	for _, key := range def.Keys() {
		keyPath := append(append([]string{}, path...), key)
		value := def.GetPath([]string{key})
		if sub, ok := value.(*toml.Tree); ok {
			fillMissing(conf, sub, keyPath)
			continue
		}
		if !conf.HasPath(keyPath) {
			conf.SetPath(keyPath, value)
		}
	}
}

// Dump writes config to file in toml format.
func Dump(config Config, file string) error {
	b, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(file, b, 0644)
}

// TxPoolConfig converts the pool section to the core configuration. Invalid
// values are left to core sanitizing.
func (c Config) TxPoolConfig() core.TxPoolConfig {
	return core.TxPoolConfig{
		ChainID:       new(big.Int).SetUint64(c.Pool.ChainID),
		PriceBump:     c.Pool.PriceBump,
		Invalidation:  core.InvalidationPolicy(c.Pool.Invalidation),
		BlockGasLimit: c.Pool.BlockGasLimit,
		MaxTxDataSize: c.Pool.MaxTxDataSize,
		ErrorSinkSize: c.Pool.ErrorSinkSize,
	}
}

// SelectionOrder returns the parsed selection order.
func (c Config) SelectionOrder() (core.SelectionOrder, error) {
	return core.ParseSelectionOrder(c.Selection.Order)
}

// BaseFee returns the parsed base fee, nil when unset.
func (c Config) BaseFee() (*big.Int, error) {
	if c.Selection.BaseFee == "" {
		return nil, nil
	}
	fee, ok := new(big.Int).SetString(c.Selection.BaseFee, 10)
	if !ok || fee.Sign() < 0 {
		return nil, errors.Errorf("invalid base fee %q", c.Selection.BaseFee)
	}
	return fee, nil
}

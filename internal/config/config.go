package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Data     DataConfig     `mapstructure:"data"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DataConfig points at the source spreadsheets. The orders workbook and the
// items/supply workbook are produced by the commercial team; sheet names are
// part of the contract with them.
type DataConfig struct {
	OrdersFile  string `mapstructure:"orders_file"`
	OrdersSheet string `mapstructure:"orders_sheet"`
	ItemsFile   string `mapstructure:"items_file"`
	ItemsSheet  string `mapstructure:"items_sheet"`
	SupplySheet string `mapstructure:"supply_sheet"`
}

// AnalysisConfig holds the defaults for the view widgets; every value can be
// overridden per request via query params.
type AnalysisConfig struct {
	DefaultTopN          int     `mapstructure:"default_top_n"`
	DefaultCriticalUnits float64 `mapstructure:"default_critical_units"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// config file absent: env vars only
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("data.orders_file", "data/pedidos.xlsx")
	v.SetDefault("data.orders_sheet", "")
	v.SetDefault("data.items_file", "data/itens_supply.xlsx")
	v.SetDefault("data.items_sheet", "Itens")
	v.SetDefault("data.supply_sheet", "Supply")

	v.SetDefault("analysis.default_top_n", 10)
	v.SetDefault("analysis.default_critical_units", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Data
	v.BindEnv("data.orders_file", "DATA_ORDERS_FILE")
	v.BindEnv("data.items_file", "DATA_ITEMS_FILE")

	// Log
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// WSConfig represents WebSocket connection configuration
type WSConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" json:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size" json:"write_buffer_size"`
	PingInterval    time.Duration `yaml:"ping_interval" json:"ping_interval"`
	PongTimeout     time.Duration `yaml:"pong_timeout" json:"pong_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	MaxMessageSize  int64         `yaml:"max_message_size" json:"max_message_size"`
	SendBufferSize  int           `yaml:"send_buffer_size" json:"send_buffer_size"`
}

// StorageConfig represents ledger snapshot storage configuration
type StorageConfig struct {
	Backend      string `yaml:"backend" json:"backend"` // file or badger
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`
	BadgerDir    string `yaml:"badger_dir" json:"badger_dir"`
}

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	WS      WSConfig      `yaml:"websocket" json:"websocket"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Ledger  struct {
		DefaultListLimit int `yaml:"default_list_limit" json:"default_list_limit"`
	} `yaml:"ledger" json:"ledger"`
	Heartbeat struct {
		Interval time.Duration `yaml:"interval" json:"interval"`
	} `yaml:"heartbeat" json:"heartbeat"`
	Telemetry struct {
		DBPath       string `yaml:"db_path" json:"db_path"`
		HistoryLimit int    `yaml:"history_limit" json:"history_limit"`
		TrimTo       int    `yaml:"trim_to" json:"trim_to"`
	} `yaml:"telemetry" json:"telemetry"`
}

// LoadConfig loads the application configuration
func LoadConfig() (*Config, error) {
	config := &Config{}

	// Defaults
	config.Server = ServerConfig{
		Host:            "0.0.0.0",
		Port:            8000,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
	config.WS = WSConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingInterval:    30 * time.Second,
		PongTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		MaxMessageSize:  64 * 1024,
		SendBufferSize:  256,
	}
	config.Storage = StorageConfig{
		Backend:      "file",
		SnapshotPath: "data/orders.json",
		BadgerDir:    "data/badger",
	}
	config.Ledger.DefaultListLimit = 20
	config.Heartbeat.Interval = 30 * time.Second
	config.Telemetry.DBPath = "data/telemetry.db"
	config.Telemetry.HistoryLimit = 1000
	config.Telemetry.TrimTo = 500

	// Environment overrides
	if port, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil {
		config.Server.Port = port
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if path := os.Getenv("SNAPSHOT_PATH"); path != "" {
		config.Storage.SnapshotPath = path
	}
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if dir := os.Getenv("BADGER_DIR"); dir != "" {
		config.Storage.BadgerDir = dir
	}
	if interval, err := time.ParseDuration(os.Getenv("HEARTBEAT_INTERVAL")); err == nil {
		config.Heartbeat.Interval = interval
	}
	if limit, err := strconv.Atoi(os.Getenv("LEDGER_LIST_LIMIT")); err == nil {
		config.Ledger.DefaultListLimit = limit
	}
	if path := os.Getenv("TELEMETRY_DB_PATH"); path != "" {
		config.Telemetry.DBPath = path
	}

	// Config file overrides
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/relay")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if viper.IsSet("server.host") {
			config.Server.Host = viper.GetString("server.host")
		}
		if viper.IsSet("server.port") {
			config.Server.Port = viper.GetInt("server.port")
		}
		if viper.IsSet("websocket.ping_interval") {
			config.WS.PingInterval = viper.GetDuration("websocket.ping_interval")
		}
		if viper.IsSet("websocket.pong_timeout") {
			config.WS.PongTimeout = viper.GetDuration("websocket.pong_timeout")
		}
		if viper.IsSet("websocket.write_timeout") {
			config.WS.WriteTimeout = viper.GetDuration("websocket.write_timeout")
		}
		if viper.IsSet("websocket.max_message_size") {
			config.WS.MaxMessageSize = viper.GetInt64("websocket.max_message_size")
		}
		if viper.IsSet("websocket.send_buffer_size") {
			config.WS.SendBufferSize = viper.GetInt("websocket.send_buffer_size")
		}
		if viper.IsSet("storage.backend") {
			config.Storage.Backend = viper.GetString("storage.backend")
		}
		if viper.IsSet("storage.snapshot_path") {
			config.Storage.SnapshotPath = viper.GetString("storage.snapshot_path")
		}
		if viper.IsSet("storage.badger_dir") {
			config.Storage.BadgerDir = viper.GetString("storage.badger_dir")
		}
		if viper.IsSet("ledger.default_list_limit") {
			config.Ledger.DefaultListLimit = viper.GetInt("ledger.default_list_limit")
		}
		if viper.IsSet("heartbeat.interval") {
			config.Heartbeat.Interval = viper.GetDuration("heartbeat.interval")
		}
		if viper.IsSet("telemetry.db_path") {
			config.Telemetry.DBPath = viper.GetString("telemetry.db_path")
		}
		if viper.IsSet("telemetry.history_limit") {
			config.Telemetry.HistoryLimit = viper.GetInt("telemetry.history_limit")
		}
		if viper.IsSet("telemetry.trim_to") {
			config.Telemetry.TrimTo = viper.GetInt("telemetry.trim_to")
		}
	}

	return config, nil
}

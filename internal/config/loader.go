package config

import (
	"fmt"

	"salesetl/internal/db"

	"github.com/spf13/viper"
)

// Pipeline holds the filesystem and run settings for the sales ETL.
type Pipeline struct {
	StagingFile        string
	ProcessedDir       string
	InvalidRecordsFile string
	MigrationsDir      string
	LogPath            string
	LogLevel           string
}

// Config is the full application configuration.
type Config struct {
	DB       db.Config
	Pipeline Pipeline
}

// DefaultPipeline returns the default pipeline settings.
func DefaultPipeline() Pipeline {
	return Pipeline{
		StagingFile:        "data/raw/sales_data.json",
		ProcessedDir:       "data/processed",
		InvalidRecordsFile: "logs/invalid_sales.json",
		MigrationsDir:      "migrations",
		LogPath:            "logs/sales_etl.log",
		LogLevel:           "info",
	}
}

// Load reads config.yaml from configPath, applying defaults and env overrides.
func Load(configPath string) (Config, error) {
	cfg := Config{
		DB:       db.DefaultConfig(),
		Pipeline: DefaultPipeline(),
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()      // allow environment overrides
	v.SetEnvPrefix("ETL") // map env vars like ETL_DATABASE_HOST

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("pipeline.staging_file")
	v.BindEnv("pipeline.processed_dir")
	v.BindEnv("pipeline.invalid_records_file")
	v.BindEnv("pipeline.migrations_dir")
	v.BindEnv("pipeline.log_path")
	v.BindEnv("pipeline.log_level")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Use defaults + env.
		fmt.Println("No config.yaml found, using defaults and env vars")
	}

	if v.IsSet("database.host") {
		cfg.DB.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.DB.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.DB.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.DB.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DB.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.DB.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("pipeline.staging_file") {
		cfg.Pipeline.StagingFile = v.GetString("pipeline.staging_file")
	}
	if v.IsSet("pipeline.processed_dir") {
		cfg.Pipeline.ProcessedDir = v.GetString("pipeline.processed_dir")
	}
	if v.IsSet("pipeline.invalid_records_file") {
		cfg.Pipeline.InvalidRecordsFile = v.GetString("pipeline.invalid_records_file")
	}
	if v.IsSet("pipeline.migrations_dir") {
		cfg.Pipeline.MigrationsDir = v.GetString("pipeline.migrations_dir")
	}
	if v.IsSet("pipeline.log_path") {
		cfg.Pipeline.LogPath = v.GetString("pipeline.log_path")
	}
	if v.IsSet("pipeline.log_level") {
		cfg.Pipeline.LogLevel = v.GetString("pipeline.log_level")
	}

	return cfg, nil
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/eisenwinter/extrxx/cmd"
	"github.com/eisenwinter/extrxx/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	Version   = "?"
	BuildTime = "?"
	GitCommit = "-"
	GitRef    = "-"
)

func main() {
	//version info
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("extrxx %s, built %s from %s (%s)", Version, BuildTime, GitCommit, GitRef)
		return
	}
	logger := bootstrap()
	defer func() {
		_ = logger.Sync()

	}()
	cmd.TopLevelLogger = logger
	cmd.Execute()
}

func bootstrap() *zap.Logger {
	if _, err := os.Stat(".env"); err == nil {
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Error loading .env file")
		}
	}
	cfg := zap.NewProductionConfig()
	if r := os.Getenv("DEBUG_LOG"); r == "true" {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		log.Fatal(err)
	}
	cobra.OnInitialize(func() { initConfig(logger) })
	return logger
}

func setDefaults() {
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.cors.allowed-origins", []string{
		"chrome-extension://*",
		"moz-extension://*",
		"safari-web-extension://*",
	})
	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.dsn", "file:data/extrxx.db?_foreign_keys=on")
	viper.SetDefault("database.prefix", "extrxx")
	viper.SetDefault("tokens.code-ttl", "5m")
	viper.SetDefault("tokens.access-ttl", "1h")
	viper.SetDefault("tokens.refresh-ttl", "720h")
	viper.SetDefault("tokens.last-used-interval", "0s")
	viper.SetDefault("tokens.token-size", 32)
	viper.SetDefault("housekeeping.interval", "0s")
	viper.SetDefault("housekeeping.retention", "168h")
}

func initConfig(logger *zap.Logger) {
	bind := func(from string, to string) {
		err := viper.BindEnv(to, from)
		if err != nil {
			logger.Error("unable to bindenv", zap.String("from", from), zap.String("to", to), zap.Error(err))
		}

	}
	setDefaults()
	bind("PORT", "server.port")
	bind("ADDRESS", "server.address")

	bind("EXTRXX_PORT", "server.port")
	bind("EXTRXX_ADDRESS", "server.address")
	bind("EXTRXX_SERVER_ISSUER_KEY", "server.issuer-key")
	bind("EXTRXX_SERVER_CORS_ALLOWED_ORIGINS", "server.cors.allowed-origins")
	bind("EXTRXX_SERVER_CORS_ALLOWED_METHODS", "server.cors.allowed-methods")
	bind("EXTRXX_SERVER_CORS_ALLOW_CREDENTIALS", "server.cors.allow-credentials")

	bind("EXTRXX_DATABASE_TYPE", "database.type")
	bind("EXTRXX_DATABASE_DSN", "database.dsn")
	bind("EXTRXX_DATABASE_NAME", "database.name")
	bind("EXTRXX_DATABASE_PREFIX", "database.prefix")

	bind("EXTRXX_TOKENS_CODE_TTL", "tokens.code-ttl")
	bind("EXTRXX_TOKENS_ACCESS_TTL", "tokens.access-ttl")
	bind("EXTRXX_TOKENS_REFRESH_TTL", "tokens.refresh-ttl")
	bind("EXTRXX_TOKENS_LAST_USED_INTERVAL", "tokens.last-used-interval")
	bind("EXTRXX_TOKENS_TOKEN_SIZE", "tokens.token-size")

	bind("EXTRXX_HOUSEKEEPING_INTERVAL", "housekeeping.interval")
	bind("EXTRXX_HOUSEKEEPING_RETENTION", "housekeeping.retention")

	if cmd.ConfigFileLocation != "" {
		logger.Debug("Using supplied config file", zap.String("file", cmd.ConfigFileLocation))
		viper.SetConfigFile(cmd.ConfigFileLocation)
	} else {
		path, err := os.Getwd()
		if err != nil {
			logger.Warn("Unable to get current working dir", zap.Error(err))
		}
		cobra.CheckErr(err)
		viper.AddConfigPath(path)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		logger.Debug("Looking for default config file")
	}
	//precedence: environment overwrites yml
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Debug("No confg file loaded")
	} else {
		logger.Debug("Config file loaded", zap.String("file", viper.ConfigFileUsed()))
	}

	conf := &config.Configuration{}
	err := viper.Unmarshal(conf)
	if err != nil {
		logger.Fatal("Unable to unmarshall config", zap.Error(err))
	}
	logger.Debug("Config loaded", zap.Any("config", conf))
	logger.Debug("Validating final config")
	if err = conf.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	if conf.Server.IssuerKey == "" {
		logger.Warn("No server.issuer-key configured, the code endpoint rejects every request")
	}
	cmd.LoadedConfig = conf
}

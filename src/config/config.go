package config

import (
	"encoding/json"

	aws_handler "github.com/seonhu82/Dollar-Invest/src/utils/aws"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	AWS             AWSConfig            `mapstructure:"aws"`
}

type ServiceConfig struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"logLevel"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Driver           string `mapstructure:"driver"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type ExternalClientConfig struct {
	KoreaExim KoreaEximConfig `mapstructure:"koreaExim"`
	ERAPI     ERAPIConfig     `mapstructure:"erApi"`
	KIS       KISConfig       `mapstructure:"kis"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
}

type KoreaEximConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	APIKey  string `mapstructure:"apiKey"`
}

type ERAPIConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
}

type KISConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
}

type BridgeConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
}

type AWSConfig struct {
	Region      string `mapstructure:"region"`
	SecretsName string `mapstructure:"secretsName"`
}

// LoadConfig reads settings/appsettings.yaml, or
// appsettings.<ENV>.yaml when an environment name is given.
func LoadConfig(path string, env ...string) (*Config, error) {
	var cfg Config

	// Local development overrides live in .env; absence is not an error.
	_ = godotenv.Load()

	configName := "appsettings"
	if len(env) > 0 && env[0] != "" {
		configName = "appsettings." + env[0]
	}

	viper.AddConfigPath(path)
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	_ = viper.BindEnv("externalClients.koreaExim.apiKey", "KOREA_EXIM_API_KEY")
	_ = viper.BindEnv("databases.sql.password", "DB_PASSWORD")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AWS.SecretsName != "" {
		if err := cfg.resolveSecrets(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// secretPayload is the JSON document stored in AWS Secrets Manager.
type secretPayload struct {
	DBPassword      string `json:"dbPassword"`
	KoreaEximAPIKey string `json:"koreaEximApiKey"`
}

func (c *Config) resolveSecrets() error {
	handler, err := aws_handler.NewAWSHandler(c.AWS.Region)
	if err != nil {
		return err
	}
	raw, err := handler.SecretManager.GetSecretValue(c.AWS.SecretsName)
	if err != nil {
		return err
	}
	var payload secretPayload
	if err = json.Unmarshal([]byte(raw), &payload); err != nil {
		return err
	}
	if payload.DBPassword != "" {
		c.Databases.SQL.Password = payload.DBPassword
	}
	if payload.KoreaEximAPIKey != "" {
		c.ExternalClients.KoreaExim.APIKey = payload.KoreaEximAPIKey
	}
	return nil
}

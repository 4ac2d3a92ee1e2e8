package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/anchor/internal/flagx"
	"github.com/dmitrijs2005/anchor/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept "15m" strings or integer nanoseconds. Absent keys keep the
// current value.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	GRPCAddr        string         `json:"grpc_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	AccessTokenTTL  timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL timex.Duration `json:"refresh_token_ttl"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	AMQPURL         string         `json:"amqp_url"`
	AMQPExchange    string         `json:"amqp_exchange"`
	ReplicateToken  string         `json:"replicate_api_token"`
	ReplicateURL    string         `json:"replicate_url"`
	EnhanceTimeout  timex.Duration `json:"enhance_timeout"`
	StrokeMethod    string         `json:"stroke_extraction"`
	LogLevel        string         `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson loads the file named by -c/-config, if any, into config.
// It panics if the file cannot be read or parsed.
func parseJson(config *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.AMQPURL, c.AMQPURL)
	setString(&config.AMQPExchange, c.AMQPExchange)
	setString(&config.ReplicateToken, c.ReplicateToken)
	setString(&config.ReplicateURL, c.ReplicateURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StrokeMethod, c.StrokeMethod)

	if c.AccessTokenTTL.Duration > 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration > 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.EnhanceTimeout.Duration > 0 {
		config.EnhanceTimeout = c.EnhanceTimeout.Duration
	}
}

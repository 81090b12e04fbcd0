package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, 60*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, time.Hour, cfg.Auth.RevocationTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 20, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Mongo.URI)
	assert.Empty(t, cfg.Mail.Server)
	assert.True(t, cfg.Mail.StartTLS)
	assert.Equal(t, 500*time.Millisecond, cfg.Mail.InitialBackoff)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "bookly.mail", cfg.Kafka.Topic)
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "s3cret",
		"ENV":              "production",
		"ACCESS_TOKEN_TTL": "15m",
		"KAFKA_BROKERS":    "k1:9092,k2:9092",
		"MAIL_STARTTLS":    "false",
		"REDIS_URL":        "redis://:pw@cache:6379/2",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Mail.StartTLS)
	assert.Equal(t, "redis://:pw@cache:6379/2", cfg.Redis.URL)
}

func TestProcess_SecretRequired(t *testing.T) {
	_, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: 9090
database:
  driver: memory
jwt:
  secret: test-secret
ledger:
  low_stock_threshold: 4
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadFrom(t *testing.T) {
	dir := writeConfig(t, testYAML)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Ledger.LowStockThreshold)
	// 默认值
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, 20*time.Millisecond, cfg.Ledger.RetryInterval)
	assert.Equal(t, "licoreria.events", cfg.MQ.Exchange)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	dir := writeConfig(t, testYAML)
	t.Setenv("LICORERIA_SERVER_PORT", "7070")
	t.Setenv("LICORERIA_LEDGER_MAX_RETRIES", "5")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, Mode: "debug"},
			Database: DatabaseConfig{Driver: "mysql"},
			JWT:      JWTConfig{Secret: "s"},
		}
	}

	assert.NoError(t, validate(base()))

	cfg := base()
	cfg.Database.Driver = "sqlite"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Server.Mode = "release"
	cfg.JWT.Secret = "your-secret-key-change-in-production"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.MQ.Enabled = true
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Ledger.MaxRetries = -1
	assert.Error(t, validate(cfg))
}

func TestDSN(t *testing.T) {
	mysqlCfg := DatabaseConfig{
		Driver: "mysql", User: "root", Password: "pw", Host: "db", Port: 3306,
		DBName: "licoreria", Charset: "utf8mb4", ParseTime: true, Loc: "America/La_Paz",
	}
	assert.Equal(t,
		"root:pw@tcp(db:3306)/licoreria?charset=utf8mb4&parseTime=true&loc=America%2FLa_Paz",
		mysqlCfg.DSN())

	pgCfg := DatabaseConfig{Driver: "postgres", User: "pg", Password: "pw", Host: "db", Port: 5432, DBName: "licoreria"}
	assert.Equal(t, "host=db port=5432 user=pg password=pw dbname=licoreria sslmode=disable", pgCfg.DSN())
}

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruizhu/shopapi/config"
)

func TestDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: 3306, User: "root", Password: "pw", Name: "ruizhu"}

	cases := map[string]string{
		"mysql":     "root:pw@tcp(db:3306)/ruizhu?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		"postgres":  "host=db user=root password=pw dbname=ruizhu port=3306 sslmode=disable TimeZone=UTC",
		"sqlite":    "ruizhu.db",
		"sqlserver": "sqlserver://root:pw@db:3306?database=ruizhu",
	}
	for driver, want := range cases {
		cfg := base
		cfg.Driver = driver
		assert.Equal(t, want, DSN(cfg), driver)
	}

	base.DSN = "file::memory:"
	assert.Equal(t, "file::memory:", DSN(base))
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file:opentest?mode=memory&cache=shared"})
	require.NoError(t, err)
	defer Close(db)

	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
}

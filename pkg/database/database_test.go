package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"", DriverPostgres, DriverMySQL} {
		d, err := (&Config{Driver: driver, Host: "db", Port: 5432, DBName: "pineapple"}).Dialector()
		require.NoError(t, err, driver)
		want := DriverPostgres
		if driver == DriverMySQL {
			want = DriverMySQL
		}
		assert.Equal(t, want, d.Name())
	}

	_, err := (&Config{Driver: "oracle"}).Dialector()
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, ParseLogLevel("silent"))
	assert.Equal(t, logger.Info, ParseLogLevel("info"))
	assert.Equal(t, logger.Warn, ParseLogLevel(""))
}

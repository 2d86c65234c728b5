package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://u:p@localhost:5432/fin", "postgres"},
		{"postgresql://u:p@localhost/fin", "postgres"},
		{"mysql://root:secret@db:3306/fin", "mysql"},
		{"sqlite:financeiromax.db", "sqlite"},
		{"data.db", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, err := Dialector(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	_, err := Dialector("")
	assert.Error(t, err)
}

func TestMysqlDSN(t *testing.T) {
	assert.Equal(t,
		"root:secret@tcp(db:3306)/fin?charset=utf8mb4&parseTime=True&loc=UTC",
		mysqlDSN("mysql://root:secret@db:3306/fin"))
	assert.Equal(t,
		"tcp(db:3306)/fin?parseTime=true",
		mysqlDSN("mysql://db:3306/fin?parseTime=true"))
}

func TestOpen_SQLiteMemory(t *testing.T) {
	db, err := Open("sqlite::memory:", Options{})
	require.NoError(t, err)
	defer db.Close()

	assert.False(t, SupportsRowLocks(db.GORM))

	var one int
	require.NoError(t, db.GORM.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

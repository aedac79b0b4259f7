package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		ConnPool: conn,
	})
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func TestNewDBOverride(t *testing.T) {
	gormDB, _ := newMockDB(t)
	NewDB(gormDB)

	assert.Equal(t, gormDB, GetDb())
}

func TestGetDbReturnsSingleton(t *testing.T) {
	gormDB, _ := newMockDB(t)
	NewDB(gormDB)

	assert.Equal(t, GetDb(), GetDb())
}

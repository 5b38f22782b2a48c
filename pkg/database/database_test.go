package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestOpenConn_WrapsAndCloses(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := OpenConn(conn, logger.Silent)
	require.NoError(t, err)
	assert.True(t, db.Config.SkipDefaultTransaction)
	assert.True(t, db.Config.TranslateError)

	mock.ExpectClose()
	require.NoError(t, Close(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}

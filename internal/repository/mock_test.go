package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var (
	travelOptionCols = []string{"id", "type", "source", "destination", "date_time", "price_cents", "available_seats", "created_at", "updated_at"}
	bookingCols      = []string{"id", "user_id", "travel_option_id", "number_of_seats", "total_price_cents", "status", "created_at"}
	joinedCols       = append(append([]string{}, bookingCols...), travelOptionCols...)
	fixedTime        = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
)

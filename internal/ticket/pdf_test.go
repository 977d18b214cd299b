package ticket

import (
	"bytes"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	when := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	b := domain.Booking{
		ID: 3, Seats: 2, TotalPriceCents: 20000, Status: domain.BookingStatusConfirmed, CreatedAt: when,
		TravelOption: &domain.TravelOption{Type: domain.TravelTypeTrain, Source: "City C", Destination: "City D", DateTime: when},
	}

	data, name, err := Render(b, "testuser", nil)
	require.NoError(t, err)
	assert.Equal(t, "ticket_3.pdf", name)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	b.Status = domain.BookingStatusCancelled
	_, _, err = Render(b, "testuser", time.UTC)
	assert.NoError(t, err)
}

func TestRender_RequiresTravelOption(t *testing.T) {
	_, _, err := Render(domain.Booking{ID: 1}, "testuser", nil)
	assert.Error(t, err)
}

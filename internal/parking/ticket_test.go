package parking

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStoreMint(t *testing.T) {
	store := NewTicketStore()
	entry := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	ticket := store.Mint("S-C-1", "KA01HH1234", FourWheel, entry)

	_, err := uuid.Parse(ticket.ID)
	require.NoError(t, err, "ticket id should be a UUID")
	assert.Equal(t, "S-C-1", ticket.SpotID)
	assert.Equal(t, "KA01HH1234", ticket.LicensePlate)
	assert.Equal(t, FourWheel, ticket.Class)
	assert.Equal(t, entry, ticket.EntryTime)
	assert.Zero(t, ticket.Fee)
	assert.False(t, ticket.Settled)
	assert.True(t, ticket.SettledAt.IsZero())

	other := store.Mint("S-C-2", "KA01HH9999", FourWheel, entry)
	assert.NotEqual(t, ticket.ID, other.ID)
	assert.Equal(t, 2, store.OpenCount())
}

func TestTicketStoreGet(t *testing.T) {
	store := NewTicketStore()
	minted := store.Mint("S-B-1", "BIKE-1", TwoWheel, time.Now())

	got, err := store.Get(minted.ID)
	require.NoError(t, err)
	assert.Equal(t, minted, got)

	_, err = store.Get("unknown-id")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTicketStoreSettleOnce(t *testing.T) {
	store := NewTicketStore()
	entry := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	minted := store.Mint("S-C-1", "KA01HH1234", FourWheel, entry)

	settled, err := store.Settle(minted.ID, 20, entry.Add(90*time.Minute))
	require.NoError(t, err)
	assert.True(t, settled.Settled)
	assert.Equal(t, 20.0, settled.Fee)
	assert.Equal(t, entry.Add(90*time.Minute), settled.SettledAt)

	_, err = store.Settle(minted.ID, 999, entry.Add(5*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadySettled)

	got, _ := store.Get(minted.ID)
	assert.Equal(t, 20.0, got.Fee, "second settle must not overwrite the fee")
	assert.Equal(t, entry.Add(90*time.Minute), got.SettledAt)

	_, err = store.Settle("unknown-id", 10, entry)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTicketStoreGetReturnsCopy(t *testing.T) {
	store := NewTicketStore()
	minted := store.Mint("S-C-1", "KA01HH1234", FourWheel, time.Now())

	got, _ := store.Get(minted.ID)
	got.Settled = true
	got.Fee = 100

	again, _ := store.Get(minted.ID)
	assert.False(t, again.Settled)
	assert.Zero(t, again.Fee)
}

func TestTicketStoreListAndRevenue(t *testing.T) {
	store := NewTicketStore()
	now := time.Now()

	first := store.Mint("S-C-1", "A", FourWheel, now)
	second := store.Mint("S-C-2", "B", FourWheel, now)
	third := store.Mint("S-B-1", "C", TwoWheel, now)

	_, err := store.Settle(second.ID, 30, now)
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 2, store.OpenCount())
	assert.InDelta(t, 30.0, store.Revenue(), 0.0001)
}

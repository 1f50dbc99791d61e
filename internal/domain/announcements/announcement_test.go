package announcements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/domain/shared/money"
)

var now = time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)

func ptr(m money.Money) *money.Money { return &m }

func TestTermsValidate(t *testing.T) {
	eur := func(v int64) *money.Money { return ptr(money.Must(v, "EUR")) }
	cases := []struct {
		name  string
		terms Terms
		ok    bool
	}{
		{"rental", Terms{OwnerID: "o", Kind: KindRental, DailyPrice: eur(5000), Deposit: eur(100)}, true},
		{"rental without deposit", Terms{OwnerID: "o", Kind: KindRental, DailyPrice: eur(5000)}, false},
		{"rental with sale price", Terms{OwnerID: "o", Kind: KindRental, DailyPrice: eur(1), Deposit: eur(1), SalePrice: eur(1)}, false},
		{"rental mixed currency", Terms{OwnerID: "o", Kind: KindRental, DailyPrice: eur(1), Deposit: ptr(money.Must(1, "USD"))}, false},
		{"sale", Terms{OwnerID: "o", Kind: KindSale, SalePrice: eur(20000)}, true},
		{"sale with deposit", Terms{OwnerID: "o", Kind: KindSale, SalePrice: eur(1), Deposit: eur(1)}, false},
		{"negative", Terms{OwnerID: "o", Kind: KindSale, SalePrice: &money.Money{Amount: -1, Currency: "EUR"}}, false},
		{"no owner", Terms{Kind: KindSale, SalePrice: eur(1)}, false},
		{"unknown kind", Terms{OwnerID: "o", Kind: "LEASE"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.terms.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTerms)
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("rental")
	require.NoError(t, err)
	assert.Equal(t, KindRental, k)

	_, err = ParseKind("lease")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func newRental(t *testing.T) *Announcement {
	t.Helper()
	a, err := New(CreateParams{
		ID:         "a1",
		OwnerID:    "owner",
		Kind:       KindRental,
		Title:      " Drill ",
		DailyPrice: ptr(money.Must(5000, "EUR")),
		Deposit:    ptr(money.Must(20000, "EUR")),
		Now:        now,
	})
	require.NoError(t, err)
	return a
}

func TestNew(t *testing.T) {
	a := newRental(t)
	assert.Equal(t, "Drill", a.Title)
	assert.True(t, a.OwnedBy("owner"))
	assert.False(t, a.OwnedBy(""))
	require.Len(t, a.PendingEvents(), 1)
	assert.Equal(t, "announcement.created", a.PendingEvents()[0].EventName())
}

func TestTermsSnapshotIsDetached(t *testing.T) {
	a := newRental(t)
	terms := a.Terms()
	terms.DailyPrice.Amount = 1
	assert.Equal(t, int64(5000), a.DailyPrice.Amount)
}

func TestUpdate(t *testing.T) {
	a := newRental(t)
	title := "Hammer drill"
	require.NoError(t, a.Update(UpdateParams{Title: &title, DailyPrice: ptr(money.Must(6000, "EUR"))}, now.Add(time.Hour)))
	assert.Equal(t, "Hammer drill", a.Title)
	assert.Equal(t, int64(6000), a.DailyPrice.Amount)
	assert.Equal(t, now.Add(time.Hour), a.UpdatedAt)
}

func TestUpdateRejectsKindChange(t *testing.T) {
	a := newRental(t)
	sale := KindSale
	assert.ErrorIs(t, a.Update(UpdateParams{Kind: &sale}, now), ErrKindImmutable)
}

func TestUpdateIsAtomic(t *testing.T) {
	a := newRental(t)
	title := "New title"
	err := a.Update(UpdateParams{Title: &title, SalePrice: ptr(money.Must(1, "EUR"))}, now)
	assert.ErrorIs(t, err, ErrInvalidTerms)
	assert.Equal(t, "Drill", a.Title)
	assert.Nil(t, a.SalePrice)
}

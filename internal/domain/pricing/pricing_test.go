package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/shared/money"
)

func ptr(m money.Money) *money.Money { return &m }

func rentalTerms() announcements.Terms {
	return announcements.Terms{
		ID:         "a1",
		OwnerID:    "owner",
		Kind:       announcements.KindRental,
		DailyPrice: ptr(money.Must(5000, "EUR")),
		Deposit:    ptr(money.Must(20000, "EUR")),
	}
}

func TestQuoteRental(t *testing.T) {
	period := daterange.Range{Start: daterange.MustParse("2024-06-01"), End: daterange.MustParse("2024-06-03")}

	quote, err := Quote(rentalTerms(), &period)
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Days)
	assert.Equal(t, money.Must(15000, "EUR"), quote.Total)
	require.NotNil(t, quote.Deposit)
	assert.Equal(t, money.Must(20000, "EUR"), *quote.Deposit)
}

func TestQuoteRentalSameDayIsOneDay(t *testing.T) {
	d := daterange.MustParse("2024-06-01")
	quote, err := Quote(rentalTerms(), &daterange.Range{Start: d, End: d})
	require.NoError(t, err)
	assert.Equal(t, money.Must(5000, "EUR"), quote.Total)
}

func TestQuoteRentalRequiresRange(t *testing.T) {
	_, err := Quote(rentalTerms(), nil)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	inverted := daterange.Range{Start: daterange.MustParse("2024-06-03"), End: daterange.MustParse("2024-06-01")}
	_, err = Quote(rentalTerms(), &inverted)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	start := daterange.MustParse("2026-10-14")
	endless := daterange.Range{Start: start, End: daterange.MustParse("2400-01-01")}
	_, err = Quote(rentalTerms(), &endless)
	assert.ErrorIs(t, err, daterange.ErrRangeTooLong)

	longest := daterange.Range{Start: start, End: start.AddDays(daterange.MaxLen - 1)}
	quote, err := Quote(rentalTerms(), &longest)
	require.NoError(t, err)
	assert.Equal(t, money.Must(5000*daterange.MaxLen, "EUR"), quote.Total)
}

func TestQuoteSaleIgnoresRange(t *testing.T) {
	terms := announcements.Terms{
		ID:        "a2",
		OwnerID:   "owner",
		Kind:      announcements.KindSale,
		SalePrice: ptr(money.Must(20000, "EUR")),
	}
	period := daterange.Range{Start: daterange.MustParse("2024-06-01"), End: daterange.MustParse("2024-06-30")}

	quote, err := Quote(terms, &period)
	require.NoError(t, err)
	assert.Equal(t, money.Must(20000, "EUR"), quote.Total)
	assert.Nil(t, quote.Deposit)
	assert.Zero(t, quote.Days)
}

func TestQuoteDetachesFromTerms(t *testing.T) {
	terms := rentalTerms()
	period := daterange.Range{Start: daterange.MustParse("2024-06-01"), End: daterange.MustParse("2024-06-01")}
	quote, err := Quote(terms, &period)
	require.NoError(t, err)

	terms.Deposit.Amount = 1
	assert.Equal(t, int64(20000), quote.Deposit.Amount)
}

package bidrequest

import (
	"sync"

	"github.com/prebid/prebid-rtb-gateway/schema"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Amount is a sum of money in a given currency.
type Amount struct {
	Currency currency.Unit
	Value    decimal.Decimal
}

// MicroUSD returns an amount of micros of a US dollar.
func MicroUSD(micros int64) Amount {
	return Amount{Currency: currency.USD, Value: decimal.New(micros, -6)}
}

// CPM returns the amount per thousand impressions given a price per impression.
func (a Amount) CPM() Amount {
	return Amount{Currency: a.Currency, Value: a.Value.Shift(3)}
}

func (a Amount) IsZero() bool {
	return a.Value.IsZero() && a.Currency == currency.Unit{}
}

func (a Amount) String() string {
	if a.Currency == (currency.Unit{}) {
		return a.Value.String()
	}
	return a.Value.String() + " " + a.Currency.String()
}

var amountDescription = sync.OnceValue(func() *schema.StructDescription[Amount] {
	d := schema.NewStruct[Amount]("Amount", 0)
	schema.AddField(d, "value", func(a *Amount) *decimal.Decimal { return &a.Value }, schema.Decimal())
	schema.AddField(d, "currencyCode", func(a *Amount) *currency.Unit { return &a.Currency }, schema.Currency())
	return d
})

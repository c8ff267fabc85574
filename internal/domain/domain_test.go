package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItem_Normalized(t *testing.T) {
	item := LineItem{
		Quantity:        0,
		UnitRate:        decimal.NewFromInt(-5),
		DiscountPercent: decimal.NewFromInt(150),
	}.Normalized()

	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.UnitRate.IsZero())
	assert.True(t, item.DiscountPercent.Equal(decimal.NewFromInt(100)))

	item = LineItem{Quantity: 2, DiscountPercent: decimal.NewFromInt(-1)}.Normalized()
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.DiscountPercent.IsZero())
}

func TestCart_Clone(t *testing.T) {
	var nilCart Cart
	clone := nilCart.Clone()
	require.NotNil(t, clone)
	assert.True(t, clone.IsEmpty())

	c := Cart{{ProductID: 1, Quantity: 1}}
	clone = c.Clone()
	clone[0].Quantity = 9
	assert.Equal(t, 1, c[0].Quantity)
	assert.Len(t, c, 1)
}

func TestLineItem_JSONNames(t *testing.T) {
	item := LineItem{
		ProductID:       11,
		ProductName:     "Jasmine",
		CategoryName:    "Garlands",
		UnitRate:        decimal.NewFromInt(100),
		DiscountPercent: decimal.NewFromInt(20),
		Quantity:        3,
		ImageRef:        "http://shop.test/subimages/j.png",
	}
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sub_id":11,"subName":"Jasmine","productName":"Garlands","rate":100,
		"discount":20,"quantity":3,"childimg":"http://shop.test/subimages/j.png"}`, string(data))
}

func TestLineItem_RatesRoundTripAsNumbers(t *testing.T) {
	item := LineItem{ProductID: 3, UnitRate: decimal.RequireFromString("230.50"), Quantity: 1}
	data, err := json.Marshal(Cart{item})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rate":230.5`)
	assert.Contains(t, string(data), `"discount":0`)

	var back Cart
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.True(t, item.UnitRate.Equal(back[0].UnitRate))
}

func TestUserSession(t *testing.T) {
	u := UserSession{Name: "Asha", Email: "a@b.co", Phone: "9876543210", Address: "x"}
	assert.True(t, u.IsComplete())
	assert.Equal(t, RoleCustomer, u.EffectiveRole())
	assert.False(t, u.IsAdmin())

	u.Address = "   "
	assert.False(t, u.IsComplete())

	admin := UserSession{Email: "admin@bhagavathi.com", Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsComplete())
}

func TestOrderUserFrom(t *testing.T) {
	u := UserSession{Name: "Asha", Email: "a@b.co", Phone: "9876543210", Address: "x", Role: RoleCustomer}
	data, err := json.Marshal(OrderUserFrom(u))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Asha","email":"a@b.co","phone":"9876543210","address":"x"}`, string(data))
}

func TestCheckoutTransitions(t *testing.T) {
	assert.True(t, CanTransitionTo(CheckoutStateIdle, CheckoutStateSubmitting))
	assert.True(t, CanTransitionTo(CheckoutStateSubmitting, CheckoutStateConfirmed))
	assert.True(t, CanTransitionTo(CheckoutStateSubmitting, CheckoutStateFailed))
	assert.True(t, CanTransitionTo(CheckoutStateFailed, CheckoutStateIdle))
	assert.True(t, CanTransitionTo(CheckoutStateConfirmed, CheckoutStateIdle))

	assert.False(t, CanTransitionTo(CheckoutStateIdle, CheckoutStateConfirmed))
	assert.False(t, CanTransitionTo(CheckoutStateSubmitting, CheckoutStateSubmitting))
	assert.False(t, CanTransitionTo(CheckoutStateFailed, CheckoutStateSubmitting))
}

func TestAvailability_Blocks(t *testing.T) {
	assert.True(t, Availability{Status: StockSoldOut}.Blocks())
	assert.True(t, Availability{Status: StockInsufficientStock}.Blocks())
	assert.False(t, Availability{Status: StockOK}.Blocks())
	assert.False(t, Availability{Status: StockError}.Blocks())
}

func TestSubProduct_Rates(t *testing.T) {
	var p SubProduct
	require.NoError(t, json.Unmarshal([]byte(`{"sub_id":5,"subName":"Laddu","rateEntities":[
		{"quantity":1,"rate":120,"Discount":10},
		{"quantity":"500g","rate":"230.50","Discount":null}]}`), &p))

	def, ok := p.DefaultRate()
	require.True(t, ok)
	assert.Equal(t, UnitLabel("1"), def.Quantity)

	r, ok := p.RateFor("500g")
	require.True(t, ok)
	assert.True(t, r.Rate.Equal(decimal.RequireFromString("230.50")))
	assert.True(t, r.Discount.IsZero())

	_, ok = p.RateFor("1kg")
	assert.False(t, ok)

	_, ok = SubProduct{}.DefaultRate()
	assert.False(t, ok)
}

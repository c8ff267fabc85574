package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// UnitLabel is the size or weight of a rate entity. The service sends it either as a
// string ("500g") or as a bare number (1).
type UnitLabel string

func (u *UnitLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UnitLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*u = UnitLabel(n.String())
	return nil
}

// RateEntity is a (size/weight, price, discount) tuple defined by the service for a product.
type RateEntity struct {
	Quantity UnitLabel       `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Discount decimal.Decimal `json:"Discount"`
}

type SubProduct struct {
	ID           int64        `json:"sub_id"`
	Name         string       `json:"subName"`
	Image        string       `json:"childimg"`
	RateEntities []RateEntity `json:"rateEntities"`
}

// DefaultRate returns the first rate entity, which the storefront preselects.
func (p SubProduct) DefaultRate() (RateEntity, bool) {
	if len(p.RateEntities) == 0 {
		return RateEntity{}, false
	}
	return p.RateEntities[0], true
}

// RateFor returns the rate entity matching the unit label.
func (p SubProduct) RateFor(unit string) (RateEntity, bool) {
	for _, r := range p.RateEntities {
		if string(r.Quantity) == unit {
			return r, true
		}
	}
	return RateEntity{}, false
}

type Category struct {
	ID          int64        `json:"pro_id"`
	Name        string       `json:"name"`
	Image       string       `json:"img"`
	SubProducts []SubProduct `json:"subProducts"`
}

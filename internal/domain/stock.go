package domain

type StockStatus string

const (
	StockOK                StockStatus = "ok"
	StockSoldOut           StockStatus = "sold_out"
	StockInsufficientStock StockStatus = "insufficient_stock"
	StockError             StockStatus = "error"
)

// Availability is the answer of the remote stock check.
type Availability struct {
	Status  StockStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// Blocks reports whether the status definitely forbids the action.
func (a Availability) Blocks() bool {
	return a.Status == StockSoldOut || a.Status == StockInsufficientStock
}

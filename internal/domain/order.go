package domain

import "time"

// OrderUser is the user_data block sent with an order.
type OrderUser struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func OrderUserFrom(u UserSession) OrderUser {
	return OrderUser{
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Address: u.Address,
	}
}

// OrderRequest is the place-order payload. Total is the two decimal rendering of the cart total.
type OrderRequest struct {
	CartData []LineItem `json:"cart_data"`
	UserData OrderUser  `json:"user_data"`
	Total    string     `json:"total"`
}

// Order is the terminal receipt of a confirmed submission. It is never mutated.
type Order struct {
	ID          string     `json:"order_id"`
	LineItems   []LineItem `json:"line_items"`
	User        OrderUser  `json:"user"`
	Total       string     `json:"total"`
	ConfirmedAt time.Time  `json:"confirmed_at"`
}

package model

// Plan represents a purchasable subscription tier with a price and a renewal
// period in days. Plans are owned by the billing API and read-only here.
type Plan struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Periodicity int     `json:"periodicity"`
	Active      bool    `json:"active"`
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == 0 }

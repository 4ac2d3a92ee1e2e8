package anchor

import "time"

type Product string

const (
	ProductPrint   Product = "print"
	ProductPoster  Product = "poster"
	ProductPendant Product = "pendant"
)

func (p Product) Valid() bool {
	switch p {
	case ProductPrint, ProductPoster, ProductPendant:
		return true
	}
	return false
}

const OrderStatusPending = "pending"

// Shipping is the delivery address of an order.
type Shipping struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Order is a physical print of an anchor.
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	AnchorID  string    `json:"anchorId"`
	Product   Product   `json:"product"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	Shipping  Shipping  `json:"shippingInfo"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

package domain

import "github.com/shopspring/decimal"

// Product is a catalog record as returned by the catalog service.
type Product struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Brand            string          `json:"brand,omitempty"`
	Category         string          `json:"category,omitempty"`
	Price            decimal.Decimal `json:"price"`
	StockQuantity    int             `json:"stockQuantity,omitempty"`
	ProductAvailable bool            `json:"productAvailable,omitempty"`
	ReleaseDate      string          `json:"releaseDate,omitempty"`
	ImageName        string          `json:"imageName,omitempty"`
}

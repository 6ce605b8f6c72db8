package bill

import (
	"context"
	"time"
)

// Consumption is one tariff window of a bill (peak or off-peak).
type Consumption struct {
	KWh       float64 `json:"kWh"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// Item is an extra billed line item (taxes, flags, adjustments).
type Item struct {
	Label string  `json:"label"`
	Cost  float64 `json:"cost"`
}

// Bill is one monthly electricity bill.
//
// Month follows the 0-11 convention the frontend's date handling expects.
type Bill struct {
	ID                 string      `json:"id"`
	Year               int         `json:"year"`
	Month              int         `json:"month"`
	PeakConsumption    Consumption `json:"peakConsumption"`
	OffpeakConsumption Consumption `json:"offpeakConsumption"`
	TotalPrice         float64     `json:"totalPrice"`
	Items              []Item      `json:"items,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, bill *Bill) error
	List(ctx context.Context) ([]*Bill, error)
	GetByID(ctx context.Context, id string) (*Bill, error)

	// GetByYearMonth returns the bill for a billing period, or a NotFound
	// error when none exists. Year+month is the business uniqueness key.
	GetByYearMonth(ctx context.Context, year, month int) (*Bill, error)

	Update(ctx context.Context, bill *Bill) error
	Delete(ctx context.Context, id string) error
}

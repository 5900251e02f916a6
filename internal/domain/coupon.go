package domain

import "time"

// Coupon is a discount code. Codes are stored upper-cased and unique.
type Coupon struct {
	ID        int64     `json:"id,string" form:"id"`
	Code      string    `gorm:"uniqueIndex;size:32" json:"code" form:"code"`
	Discount  int       `json:"discount" form:"discount"` // percent off
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Coupon) TableName() string {
	return "shop_coupon"
}

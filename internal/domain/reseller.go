package domain

import "time"

// Reseller is a referring party (affiliate) that originates sales.
// Orders carry the reseller name as a plain tag; resellers have no
// effect on inventory logic.
type Reseller struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Slug      string    `gorm:"uniqueIndex;size:64" json:"slug" form:"slug"`
	Whatsapp  string    `json:"whatsapp" form:"whatsapp"`
	PixKey    string    `json:"pix_key" form:"pix_key"`
	Active    bool      `json:"active" form:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Reseller) TableName() string {
	return "shop_reseller"
}

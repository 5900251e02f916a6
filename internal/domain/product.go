package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Variant is a purchasable option of a product (size, brand, color) with
// its own price and stock count. Variants have no stable id; they are
// identified within the product only by their label.
//
// Historical documents used several field names for the same concept
// (marca/tamanho, preco/preco_venda, estoque); UnmarshalJSON resolves
// those aliases once, at the store boundary, into the canonical fields.
type Variant struct {
	Label string  `json:"label"`          // canonical option label (legacy alias: marca)
	Size  string  `json:"size,omitempty"` // legacy secondary label (legacy alias: tamanho)
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pick := func(keys ...string) interface{} {
		for _, k := range keys {
			if val, ok := raw[k]; ok && val != nil {
				return val
			}
		}
		return nil
	}
	v.Label = cast.ToString(pick("label", "marca"))
	v.Size = cast.ToString(pick("size", "tamanho"))
	v.Price = cast.ToFloat64(pick("price", "preco", "preco_venda"))
	v.Stock = cast.ToInt(pick("stock", "estoque"))
	if v.Stock < 0 {
		return fmt.Errorf("variant %q: negative stock %d", v.Label, v.Stock)
	}
	return nil
}

// VariantList is stored as a JSON document column on the product row so
// variants are always read and written together with their owner.
type VariantList []Variant

func (l VariantList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *VariantList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported variant list source type %T", src)
	}
}

func (VariantList) GormDataType() string {
	return "text"
}

// Product is a catalog item. Price and Stock are the legacy flat fields
// used only when the variant list is empty; with variants present the
// displayed price is the minimum variant price and flat stock is ignored.
type Product struct {
	ID        int64       `json:"id,string" form:"id"`
	Name      string      `gorm:"index" json:"name" form:"name"`
	Category  string      `gorm:"index" json:"category" form:"category"`
	Image     string      `gorm:"size:1024" json:"image" form:"image"`
	Price     float64     `json:"price" form:"price"`
	Stock     int         `json:"stock" form:"stock"`
	Variants  VariantList `gorm:"type:text" json:"variants" form:"variants"`
	Active    bool        `json:"active" form:"active"`
	Visible   bool        `json:"visible" form:"visible"`
	Upcoming  bool        `json:"upcoming" form:"upcoming"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "shop_product"
}

func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// RecalcPrice enforces the minimum-variant-price rule on save.
func (p *Product) RecalcPrice() {
	if !p.HasVariants() {
		return
	}
	min := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price < min {
			min = v.Price
		}
	}
	p.Price = min
}

package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderApproved  OrderStatus = "Approved"
	OrderCancelled OrderStatus = "Cancelled"
)

// OrderLine records one purchased item. The product is referenced by
// name, not id, and the chosen variant only by its label; both values
// are captured as they were at checkout time.
type OrderLine struct {
	Product   string  `json:"product"`        // product name at order time (legacy alias: produto)
	Variant   string  `json:"variant"`        // selected variant label (legacy alias: marca)
	Size      string  `json:"size,omitempty"` // legacy secondary label (legacy alias: tamanho)
	Quantity  int     `json:"qty"`
	UnitPrice float64 `json:"price"` // unit price at order time, never re-validated
}

func (l *OrderLine) UnmarshalJSON(data []byte) error {
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
	l.Product = cast.ToString(pick("product", "produto"))
	l.Variant = cast.ToString(pick("variant", "marca"))
	l.Size = cast.ToString(pick("size", "tamanho"))
	l.Quantity = cast.ToInt(pick("qty", "qtd", "quantidade"))
	l.UnitPrice = cast.ToFloat64(pick("price", "preco"))
	if l.Quantity == 0 {
		l.Quantity = 1
	}
	return nil
}

// Validate checks the line at the store boundary before an order is accepted.
func (l *OrderLine) Validate() error {
	if l.Product == "" {
		return fmt.Errorf("order line: product name is required")
	}
	if l.Quantity < 1 {
		return fmt.Errorf("order line %q: quantity must be >= 1", l.Product)
	}
	return nil
}

// OrderLineList is stored as a JSON document column on the order row.
type OrderLineList []OrderLine

func (l OrderLineList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *OrderLineList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported order line source type %T", src)
	}
}

func (OrderLineList) GormDataType() string {
	return "text"
}

// CustomerInfo is the opaque customer blob captured at checkout.
// The core never inspects it.
type CustomerInfo map[string]interface{}

func (c CustomerInfo) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *CustomerInfo) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported customer info source type %T", src)
	}
}

func (CustomerInfo) GormDataType() string {
	return "text"
}

// Order is a storefront sale. Status transitions are Pending->Approved
// (terminal, stock-affecting) and Pending->Cancelled (terminal, no stock
// effect); deletion removes the record regardless of status.
type Order struct {
	ID          int64         `json:"id,string" form:"id"`
	OrderNo     int64         `gorm:"uniqueIndex" json:"order_no"`
	Customer    CustomerInfo  `gorm:"type:text" json:"customer"`
	Lines       OrderLineList `gorm:"type:text" json:"lines"`
	Total       float64       `json:"total"`
	Reseller    string        `gorm:"index" json:"reseller"` // referring-party tag, no inventory effect
	Status      OrderStatus   `gorm:"index;size:16" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "shop_order"
}

package model

import "strings"

// Concession categories.  The counter menu groups items under these two
// headings and nothing else.
const (
	CategoryFood     = "Food"
	CategoryBeverage = "Beverage"
)

// ConcessionItem is one purchasable snack or drink.  Item names are unique
// case-insensitively; lookups go through EqualFold so "popcorn large" and
// "Popcorn Large" address the same row.
type ConcessionItem struct {
	Name         string  `json:"name"`          // case-insensitive unique identity
	Category     string  `json:"category"`      // CategoryFood or CategoryBeverage
	Price        float64 `json:"price"`         // unit price in pesos
	Stock        int     `json:"stock"`         // units on hand
	ReorderLevel int     `json:"reorder_level"` // restock threshold
	TotalSold    int     `json:"total_sold"`    // cumulative units debited
}

// LowStock reports whether the item has fallen below its reorder level.
func (i *ConcessionItem) LowStock() bool { return i.Stock < i.ReorderLevel }

// NameEquals compares concession item names case-insensitively.
func NameEquals(a, b string) bool { return strings.EqualFold(a, b) }

// DefaultCatalog returns the stand's starting inventory: fourteen items,
// each with 100 units on hand and a reorder level of 20.  It is written to
// the catalog store the first time the service starts against empty
// storage.
func DefaultCatalog() []ConcessionItem {
	names := []struct {
		name     string
		category string
		price    float64
	}{
		{"Popcorn Regular", CategoryFood, 85.00},
		{"Popcorn Large", CategoryFood, 120.00},
		{"Popcorn Paper Bucket", CategoryFood, 140.00},
		{"Classic Hotdog", CategoryFood, 95.00},
		{"Chicken Nuggets", CategoryFood, 140.00},
		{"Classic Fries", CategoryFood, 60.00},
		{"Cheese Fries", CategoryFood, 75.00},
		{"BBQ Fries", CategoryFood, 75.00},
		{"Sour Cream Fries", CategoryFood, 75.00},
		{"Regular Soda", CategoryBeverage, 45.00},
		{"Large Soda", CategoryBeverage, 80.00},
		{"Bottled Water", CategoryBeverage, 35.00},
		{"Iced Tea", CategoryBeverage, 45.00},
		{"Iced Coffee", CategoryBeverage, 50.00},
	}
	items := make([]ConcessionItem, 0, len(names))
	for _, n := range names {
		items = append(items, ConcessionItem{
			Name:         n.name,
			Category:     n.category,
			Price:        n.price,
			Stock:        100,
			ReorderLevel: 20,
		})
	}
	return items
}

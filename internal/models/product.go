package models

import "gorm.io/gorm"

// Product represents a catalog entry. Products sharing a ProductCode are
// variants of the same garment; per-variant stock and pricing live in Variants.
// The flat Price/Stock fields are used when a product carries no variant list.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductCode string    `json:"product_code" gorm:"index;type:varchar(50)" validate:"required,min=1,max=50"`
	Name        string    `json:"product_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Material    string    `json:"material" gorm:"type:varchar(100)" validate:"required,max=100"`
	Category    string    `json:"category" gorm:"index;type:varchar(50)" validate:"required,max=50"`
	Featured    bool      `json:"featured"`
	Price       float64   `json:"price" validate:"gte=0"`
	Stock       int       `json:"stock" validate:"gte=0"`
	Images      []string  `json:"images" gorm:"serializer:json;type:text"`
	Variants    []Variant `json:"variants" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// HasVariants reports whether stock and pricing are tracked per variant.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FindVariant returns the variant matching a (size, colour) selector, or nil.
func (p *Product) FindVariant(size, colour string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Size == size && p.Variants[i].Colour == colour {
			return &p.Variants[i]
		}
	}
	return nil
}

// Variant is a (size, colour) combination of a product with its own stock,
// price and image set.
type Variant struct {
	ID        string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID string   `json:"product_id" gorm:"index;type:varchar(36)"`
	Size      string   `json:"size" gorm:"type:varchar(20)" validate:"required,max=20"`
	Colour    string   `json:"colour" gorm:"type:varchar(50)" validate:"required,max=50"`
	Stock     int      `json:"stock" validate:"gte=0"`
	Price     float64  `json:"price" validate:"gte=0"`
	Images    []string `json:"images" gorm:"serializer:json;type:text"`
}

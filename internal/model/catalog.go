package model

import "time"

// CatalogEntry is the shared shape of the lookup collections products point
// to: categories, product types, locations and providers.
type CatalogEntry struct {
	ID          string    `firestore:"-"`
	Name        string    `firestore:"name"`
	Description string    `firestore:"description,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`

	// Provider-only contact fields.
	ContactName string `firestore:"contactName,omitempty"`
	Email       string `firestore:"email,omitempty"`
	Phone       string `firestore:"phone,omitempty"`
	Address     string `firestore:"address,omitempty"`
	Website     string `firestore:"website,omitempty"`
}

// CatalogKind identifies one of the lookup collections.
type CatalogKind string

const (
	KindCategory    CatalogKind = CollectionCategories
	KindProductType CatalogKind = CollectionProductTypes
	KindLocation    CatalogKind = CollectionLocations
	KindProvider    CatalogKind = CollectionProviders
)

// ProductField is the products field that references this kind.
func (k CatalogKind) ProductField() string {
	switch k {
	case KindCategory:
		return "categoryId"
	case KindProductType:
		return "typeId"
	case KindLocation:
		return "locationId"
	case KindProvider:
		return "providerId"
	}
	return ""
}

// UniqueNames reports whether names must be unique within the kind.
func (k CatalogKind) UniqueNames() bool {
	return k == KindCategory || k == KindProductType
}

// Valid reports whether k is a known lookup collection.
func (k CatalogKind) Valid() bool { return k.ProductField() != "" }

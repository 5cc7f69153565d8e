package model

// ProductFields are the business fields of a product, as submitted by clients.
type ProductFields struct {
	Name        string  `json:"name" bson:"name"`
	Category    string  `json:"category" bson:"category"`
	Brand       string  `json:"brand" bson:"brand"`
	Description string  `json:"description" bson:"description"`
	Price       float64 `json:"price" bson:"price"`
}

// Product is a persisted product. ID is assigned by the store and never changes.
type Product struct {
	ID string `json:"_id"`
	ProductFields
}

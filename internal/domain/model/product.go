package model

// ProductType distinguishes full credential products from standalone
// certificate products linked to an existing enrollment.
type ProductType string

const (
	ProductTypeCredential  ProductType = "credential"
	ProductTypeCertificate ProductType = "certificate"
)

// ContractDefinition marks a product as requiring a signed training contract
// before the order can be fulfilled.
type ContractDefinition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Product describes a sellable item of the catalog.
type Product struct {
	ID                  string              `json:"id"`
	Title               string              `json:"title"`
	Type                ProductType         `json:"type"`
	Price               float64             `json:"price"`
	PriceCurrency       string              `json:"price_currency"`
	TargetCourses       []Course            `json:"target_courses"`
	ContractDefinition  *ContractDefinition `json:"contract_definition"`
	RemainingOrderCount *int                `json:"remaining_order_count"`
}

// HasRemainingOrders reports whether seats are still available. An absent
// counter means the product is not seat-limited.
func (p Product) HasRemainingOrders() bool {
	return p.RemainingOrderCount == nil || *p.RemainingOrderCount > 0
}

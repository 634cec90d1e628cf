package model

// Address is a billing address owned by the authenticated user.
type Address struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostCode    string `json:"postcode"`
	CountryCode string `json:"country"`
	IsMain      bool   `json:"is_main"`
}

// Certificate attests completion of a validated order.
type Certificate struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	IssuedOn string `json:"issued_on"`
}

package maps

// LookupRequest represents the query parameters from the frontend.
type LookupRequest struct {
	Query string `form:"q" binding:"required,min=3"`
}

// AddressSuggestion is a normalized place returned to the form front ends.
// Label is what gets copied into an origin or destination field.
type AddressSuggestion struct {
	Label       string `json:"label" yaml:"label"`
	Street      string `json:"street,omitempty" yaml:"street,omitempty"`
	HouseNumber string `json:"houseNumber,omitempty" yaml:"houseNumber,omitempty"`
	ZipCode     string `json:"zipCode,omitempty" yaml:"zipCode,omitempty"`
	City        string `json:"city,omitempty" yaml:"city,omitempty"`
	Lat         string `json:"lat" yaml:"lat"`
	Lon         string `json:"lon" yaml:"lon"`
}

type nominatimAddress struct {
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Hamlet       string `json:"hamlet"`
	Country      string `json:"country"`
}

// nominatimResponse mirrors the relevant parts of the OSM search payload.
type nominatimResponse struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
}

package types

import "io"

// Product is a catalogue entry as served by the backend.
type Product struct {
	ProductID     ID     `json:"productId,omitempty"`
	ID            ID     `json:"id,omitempty"`
	Name          string `json:"name"`
	Brand         string `json:"brand,omitempty"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category,omitempty"`
	Size          string `json:"size,omitempty"`
	Material      string `json:"material,omitempty"`
	ShopName      string `json:"shopName,omitempty"`
	Price         Money  `json:"price"`
	StockQuantity int    `json:"stockQuantity,omitempty"`
	ImageURL      string `json:"imageURL,omitempty"`
	Image         string `json:"image,omitempty"`
}

// Ref is the cart identity of the product: productId, else id.
func (p Product) Ref() ID {
	return FirstID(p.ProductID, p.ID)
}

// ImageRef returns the first image reference the backend supplied.
func (p Product) ImageRef() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	return p.Image
}

// InStock reports whether the listing has stock left to reserve.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductUpload is the admin form for a new catalogue entry. Image is read
// once while the request is sent.
type ProductUpload struct {
	Name          string
	Brand         string
	Category      string
	Size          string
	Material      string
	Description   string
	Price         Money
	StockQuantity int

	FileName string
	Image    io.Reader
}

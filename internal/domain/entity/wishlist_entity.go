package entity

// Wishlist is a per-user ordered set of product ids.
type Wishlist struct {
	ID         string
	UserID     string
	ProductIDs []string
	// Products is populated on listing.
	Products []Post
}

func (w *Wishlist) Contains(productID string) bool {
	for _, id := range w.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

package handlers

import (
	"time"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	UserName    string     `json:"userName"`
	FullName    string     `json:"fullName,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toUser(u *entity.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		UserName:    u.UserName,
		FullName:    u.FullName,
		Bio:         u.Bio,
		Gender:      u.Gender,
		DateOfBirth: u.DateOfBirth,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type postResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category,omitempty"`
	Image         string    `json:"image"`
	Price         float64   `json:"price"`
	DiscountPrice float64   `json:"discountPrice"`
	Stock         int       `json:"stock"`
	InStock       bool      `json:"inStock"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toPost(p *entity.Post) postResponse {
	return postResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		Image:         p.ImageURL,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Stock:         p.Stock,
		InStock:       p.InStock,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPosts(ps []entity.Post) []postResponse {
	out := make([]postResponse, 0, len(ps))
	for i := range ps {
		out = append(out, toPost(&ps[i]))
	}
	return out
}

// productSummary is the catalog view embedded in carts, wishlists and orders.
type productSummary struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Image         string  `json:"image"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discountPrice"`
}

func toSummary(p *entity.Post) *productSummary {
	if p == nil {
		return nil
	}
	return &productSummary{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Image:         p.ImageURL,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
	}
}

type cartItemResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	ID    string             `json:"id"`
	Items []cartItemResponse `json:"items"`
}

func toCart(c *entity.Cart) cartResponse {
	out := cartResponse{ID: c.ID, Items: make([]cartItemResponse, 0, len(c.Items))}
	for _, it := range c.Items {
		out.Items = append(out.Items, cartItemResponse{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

type cartLineResponse struct {
	Product    *productSummary `json:"product"`
	Quantity   int             `json:"quantity"`
	UnitPrice  float64         `json:"unitPrice"`
	TotalPrice float64         `json:"totalPrice"`
}

type cartViewResponse struct {
	Items       []cartLineResponse `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
}

func toCartView(v *application.CartView) cartViewResponse {
	out := cartViewResponse{Items: make([]cartLineResponse, 0, len(v.Lines)), TotalAmount: v.TotalAmount}
	for _, l := range v.Lines {
		out.Items = append(out.Items, cartLineResponse{
			Product:    toSummary(l.Product),
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
		})
	}
	return out
}

type wishlistResponse struct {
	ID         string           `json:"id"`
	ProductIDs []string         `json:"productIds"`
	Products   []productSummary `json:"products,omitempty"`
}

func toWishlist(w *entity.Wishlist) wishlistResponse {
	out := wishlistResponse{ID: w.ID, ProductIDs: w.ProductIDs}
	if out.ProductIDs == nil {
		out.ProductIDs = []string{}
	}
	for i := range w.Products {
		out.Products = append(out.Products, *toSummary(&w.Products[i]))
	}
	return out
}

type orderItemResponse struct {
	ProductID   string  `json:"productId"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	ShippingAddress entity.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   entity.PaymentMethod   `json:"paymentMethod"`
	Status          entity.OrderStatus     `json:"status"`
	PaymentStatus   entity.PaymentStatus   `json:"paymentStatus"`
	TotalAmount     float64                `json:"totalAmount"`
	Items           []orderItemResponse    `json:"orderItems"`
	CreatedAt       time.Time              `json:"createdAt"`
}

func toOrder(o *entity.Order) orderResponse {
	out := orderResponse{
		ID:              o.ID,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		TotalAmount:     o.TotalAmount,
		Items:           make([]orderItemResponse, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		item := orderItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.UnitPrice}
		if it.Product != nil {
			item.Title, item.Description, item.Image = it.Product.Title, it.Product.Description, it.Product.ImageURL
		}
		out.Items = append(out.Items, item)
	}
	return out
}

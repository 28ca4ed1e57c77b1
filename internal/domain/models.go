package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description"`
	Icon        string `db:"icon" json:"icon"`
	Active      bool   `db:"active" json:"active"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
	UpdatedAt   string `db:"updated_at" json:"updatedAt"`
}

// Business is a directory listing.
type Business struct {
	ID           string      `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Slug         string      `db:"slug" json:"slug"`
	Description  string      `db:"description" json:"description"`
	CategoryID   string      `db:"category_id" json:"categoryId"`
	OwnerID      string      `db:"owner_id" json:"ownerId"`
	WhatsApp     string      `db:"whatsapp" json:"whatsapp"`
	Phone        string      `db:"phone" json:"phone"`
	WebsiteURL   string      `db:"website_url" json:"websiteUrl"`
	SocialLinks  SocialLinks `db:"social_links" json:"socialLinks"`
	Address      string      `db:"address" json:"address"`
	City         string      `db:"city" json:"city"`
	GeoLat       *float64    `db:"geo_lat" json:"geoLat"`
	GeoLng       *float64    `db:"geo_lng" json:"geoLng"`
	LogoURL      string      `db:"logo_url" json:"logoUrl"`
	MediaGallery StringList  `db:"media_gallery" json:"mediaGallery"`
	Rating       *float64    `db:"rating" json:"rating"`
	Status       Status      `db:"status" json:"status"`
	CreatedAt    string      `db:"created_at" json:"createdAt"`
	UpdatedAt    string      `db:"updated_at" json:"updatedAt"`
}

// Product is an item or offer shown on an approved listing.
type Product struct {
	ID          string          `db:"id" json:"id"`
	BusinessID  string          `db:"business_id" json:"businessId"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	ImageURL    string          `db:"image_url" json:"imageUrl"`
	Active      bool            `db:"active" json:"active"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
	UpdatedAt   string          `db:"updated_at" json:"updatedAt"`
}

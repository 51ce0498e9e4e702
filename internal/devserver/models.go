package devserver

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nebulamart/storefront/internal/models"
)

type User struct {
	ID           string    `gorm:"primaryKey"       json:"id"`
	Email        string    `gorm:"unique;not null"  json:"email"`
	Name         string    `gorm:"not null"         json:"name"`
	PasswordHash string    `gorm:"not null"         json:"-"`
	IsAdmin      bool      `gorm:"default:false"    json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"unique;not null"          json:"name"`
	Description string `json:"description"`
}

type ProductImage struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductRef  uint   `gorm:"index;not null"           json:"-"`
	ImageURL    string `gorm:"not null"                 json:"image_url"`
	AltText     string `json:"alt_text"`
	IsThumbnail bool   `gorm:"default:false"            json:"is_thumbnail"`
}

type Product struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID      string         `gorm:"uniqueIndex;not null"     json:"product_id"`
	Name           string         `gorm:"not null"                 json:"name"`
	Description    string         `json:"description"`
	Price          float64        `gorm:"not null"                 json:"price"`
	InventoryCount int            `gorm:"default:0"                json:"inventory_count"`
	CategoryID     *uint          `json:"-"`
	Category       *Category      `json:"category,omitempty"`
	Images         []ProductImage `gorm:"foreignKey:ProductRef"    json:"images"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ProductID == "" {
		p.ProductID = uuid.NewString()
	}
	return nil
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    string `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

// toAPI converts storage rows to the wire shape the client decodes.
func (p Product) toAPI() models.Product {
	out := models.Product{
		ID:             int(p.ID),
		ProductID:      p.ProductID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		InventoryCount: p.InventoryCount,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.Category != nil {
		out.Category = &models.Category{
			ID:          int(p.Category.ID),
			Name:        p.Category.Name,
			Description: p.Category.Description,
		}
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, models.ProductImage{
			ID:          int(img.ID),
			ImageURL:    img.ImageURL,
			AltText:     img.AltText,
			IsThumbnail: img.IsThumbnail,
		})
	}
	return out
}

func (u User) toAPI() models.User {
	return models.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

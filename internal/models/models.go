package models

// PlaceholderImageURL is used when a product has no images at all.
const PlaceholderImageURL = "https://via.placeholder.com/300x300.png?text=No+Image"

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProductImage struct {
	ID          int    `json:"id"`
	ImageURL    string `json:"image_url"`
	AltText     string `json:"alt_text,omitempty"`
	IsThumbnail bool   `json:"is_thumbnail"`
}

type Product struct {
	ID             int            `json:"id"`
	ProductID      string         `json:"product_id,omitempty"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Price          float64        `json:"price"`
	InventoryCount int            `json:"inventory_count"`
	Category       *Category      `json:"category,omitempty"`
	Images         []ProductImage `json:"images,omitempty"`
	CreatedAt      string         `json:"created_at,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
}

// PrimaryImageURL resolves the display image: the thumbnail-flagged image
// wins, then the first image, then the shared placeholder.
func (p Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsThumbnail {
			return img.ImageURL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].ImageURL
	}
	return PlaceholderImageURL
}

type ProductInput struct {
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price"`
	InventoryCount int     `json:"inventory_count"`
	CategoryID     int     `json:"categoryId,omitempty"`
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type UpdateProfileInput struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UploadTarget is issued by the backend before a direct binary upload:
// the file bytes go straight to UploadURL, ImageURL is what gets stored
// on the product afterwards.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type ProductStats struct {
	TotalProducts    int             `json:"totalProducts"`
	TotalValue       float64         `json:"totalValue"`
	LowStockProducts []Product       `json:"lowStockProducts"`
	TopCategories    []CategoryCount `json:"topCategories"`
}

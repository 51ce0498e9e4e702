package mockapi

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/nebulamart/storefront/internal/models"
)

var categories = []models.Category{
	{ID: 1, Name: "Electronics", Description: "Computers, displays and tablets"},
	{ID: 2, Name: "Wearables", Description: "Watches and trackers"},
	{ID: 3, Name: "Audio", Description: "Headphones, earbuds and headsets"},
	{ID: 4, Name: "Peripherals", Description: "Keyboards and mice"},
}

type seedProduct struct {
	name        string
	price       float64
	category    int
	description string
	stock       int
}

var seedProducts = []seedProduct{
	{"Quantum Laptop", 1299.99, 1, "High-performance laptop with cutting-edge quantum processing technology", 15},
	{"Celestial Smartwatch", 399.00, 2, "Advanced smartwatch with health monitoring and GPS tracking", 32},
	{"Nova Headphones", 199.50, 3, "Premium wireless headphones with noise cancellation", 28},
	{"Fusion Keyboard", 89.99, 4, "Mechanical keyboard with customizable RGB lighting", 45},
	{"Stellar Monitor", 549.99, 1, "4K gaming monitor with 144Hz refresh rate", 12},
	{"Phoenix Mouse", 79.99, 4, "Wireless gaming mouse with precision tracking", 67},
	{"Aurora Earbuds", 129.99, 3, "True wireless earbuds with spatial audio", 89},
	{"Nexus Tablet", 799.99, 1, "Professional tablet with stylus support", 23},
	{"Zen Fitness Tracker", 199.99, 2, "Comprehensive fitness tracker with heart rate monitoring", 54},
	{"Vortex Gaming Headset", 299.99, 3, "Professional gaming headset with surround sound", 19},
}

func (b *Backend) seed() {
	for i, sp := range seedProducts {
		id := i + 1
		b.products = append(b.products, models.Product{
			ID:             id,
			Name:           sp.name,
			Description:    sp.description,
			Price:          sp.price,
			InventoryCount: sp.stock,
			Category:       b.categoryByID(sp.category),
			Images: []models.ProductImage{{
				ID:          id,
				ImageURL:    "https://via.placeholder.com/300x300.png?text=" + imageLabel(sp.name),
				AltText:     sp.name,
				IsThumbnail: true,
			}},
		})
	}
	b.nextID = len(seedProducts)

	// The demo account from the original fixture set.
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	b.accounts["user1"] = &account{
		user:         models.User{ID: "user1", Email: "demo@example.com", Name: "Demo User"},
		passwordHash: hash,
	}
}

func imageLabel(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == ' ' {
			r = '+'
		}
		out = append(out, r)
	}
	return string(out)
}

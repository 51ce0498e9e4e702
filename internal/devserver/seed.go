package devserver

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	email    string
	name     string
	password string
	admin    bool
}

var seedUsers = []seedUser{
	{"demo@example.com", "Demo User", "password123", false},
	{"admin@example.com", "Store Admin", "admin123", true},
}

type seedProduct struct {
	name        string
	price       float64
	category    string
	description string
	stock       int
}

var seedProducts = []seedProduct{
	{"Quantum Laptop", 1299.99, "Electronics", "High-performance laptop with cutting-edge quantum processing technology", 15},
	{"Celestial Smartwatch", 399.00, "Wearables", "Advanced smartwatch with health monitoring and GPS tracking", 32},
	{"Nova Headphones", 199.50, "Audio", "Premium wireless headphones with noise cancellation", 28},
	{"Fusion Keyboard", 89.99, "Peripherals", "Mechanical keyboard with customizable RGB lighting", 45},
	{"Stellar Monitor", 549.99, "Electronics", "4K gaming monitor with 144Hz refresh rate", 12},
	{"Phoenix Mouse", 79.99, "Peripherals", "Wireless gaming mouse with precision tracking", 67},
	{"Aurora Earbuds", 129.99, "Audio", "True wireless earbuds with spatial audio", 89},
	{"Nexus Tablet", 799.99, "Electronics", "Professional tablet with stylus support", 23},
	{"Zen Fitness Tracker", 199.99, "Wearables", "Comprehensive fitness tracker with heart rate monitoring", 54},
	{"Vortex Gaming Headset", 299.99, "Audio", "Professional gaming headset with surround sound", 19},
}

// Seed loads the demo fixtures on an empty database. Safe to call on
// every boot.
func (s *Server) Seed() error {
	var users int64
	if err := s.DB.Model(&User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if users > 0 {
		return nil
	}

	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		u := User{Email: su.email, Name: su.name, PasswordHash: string(hash), IsAdmin: su.admin}
		if err := s.DB.Create(&u).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}
	}

	cats := map[string]*Category{}
	for _, sp := range seedProducts {
		if _, ok := cats[sp.category]; ok {
			continue
		}
		cat := Category{Name: sp.category}
		if err := s.DB.Create(&cat).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", sp.category, err)
		}
		cats[sp.category] = &cat
	}

	for _, sp := range seedProducts {
		row := Product{
			Name:           sp.name,
			Description:    sp.description,
			Price:          sp.price,
			InventoryCount: sp.stock,
			CategoryID:     &cats[sp.category].ID,
		}
		if err := s.DB.Create(&row).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", sp.name, err)
		}
		img := ProductImage{
			ProductRef:  row.ID,
			ImageURL:    "https://via.placeholder.com/300x300.png?text=" + imageLabel(sp.name),
			AltText:     sp.name,
			IsThumbnail: true,
		}
		if err := s.DB.Create(&img).Error; err != nil {
			return fmt.Errorf("seed image for %s: %w", sp.name, err)
		}
	}
	s.Log.Info("seeded demo fixtures", "users", len(seedUsers), "products", len(seedProducts))
	return nil
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

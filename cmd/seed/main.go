package main

import (
	"context"
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotelbooking/internal/config"
	"hotelbooking/internal/database"
	"hotelbooking/internal/domain"
	jwtsvc "hotelbooking/internal/pkg/jwt"
	"hotelbooking/internal/repository"
)

type seedUser struct {
	email, password, first, last, phone string
	role                                domain.UserRole
}

type seedHotel struct {
	hotel domain.Hotel
	rooms []domain.Room
}

func main() {
	if os.Getenv("DATABASE_URL") == "" {
		_ = os.Setenv("DATABASE_URL", "hotel.db")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed:", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	log.Println("Creating users...")
	for _, su := range []seedUser{
		{"admin@hotel.local", "admin123", "Hotel", "Admin", "", domain.RoleAdmin},
		{"asha@example.com", "guest123", "Asha", "Rao", "9876543210", domain.RoleUser},
		{"ravi@example.com", "guest123", "Ravi", "Menon", "", domain.RoleUser},
	} {
		u, err := ensureUser(ctx, users, su)
		if err != nil {
			log.Fatalf("user %s: %v", su.email, err)
		}
		token, err := j.GenerateToken(u.ID, string(u.Role))
		if err != nil {
			log.Fatalf("token for %s: %v", su.email, err)
		}
		log.Printf("%s (%s) id=%d token=%s", u.Email, u.Role, u.ID, token)
	}

	log.Println("Creating hotels and rooms...")
	for _, sh := range hotels() {
		if err := ensureHotel(db, sh); err != nil {
			log.Fatalf("hotel %s: %v", sh.hotel.Name, err)
		}
	}

	log.Println("Seed completed")
}

func ensureUser(ctx context.Context, users *repository.UserRepository, su seedUser) (*domain.User, error) {
	existing, err := users.GetByEmail(ctx, su.email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        su.email,
		PasswordHash: string(hash),
		FirstName:    su.first,
		LastName:     su.last,
		Phone:        su.phone,
		Role:         su.role,
		IsActive:     true,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ensureHotel creates the hotel and its rooms unless a hotel with the same
// name and city already exists.
func ensureHotel(db *gorm.DB, sh seedHotel) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Hotel{}).
			Where("name = ? AND city = ?", sh.hotel.Name, sh.hotel.City).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Printf("%s already seeded", sh.hotel.Name)
			return nil
		}

		h := sh.hotel
		if err := tx.Create(&h).Error; err != nil {
			return err
		}
		for _, r := range sh.rooms {
			r.HotelID = h.ID
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
		}
		log.Printf("%s: %d rooms", h.Name, len(sh.rooms))
		return nil
	})
}

func room(number string, t domain.RoomType, price float64, capacity int, amenities string) domain.Room {
	return domain.Room{
		RoomNumber:    number,
		Type:          t,
		PricePerNight: price,
		Capacity:      capacity,
		Status:        domain.RoomAvailable,
		Amenities:     datatypes.JSON(amenities),
		IsActive:      true,
	}
}

func hotels() []seedHotel {
	return []seedHotel{
		{
			hotel: domain.Hotel{
				Name: "Lake View Palace", City: "Udaipur", Country: "India",
				Address: "Lake Pichola Road", Rating: 4.6,
				CheckInTime: "14:00", CheckOutTime: "11:00", IsActive: true,
			},
			rooms: []domain.Room{
				room("101", domain.RoomSingle, 2500, 1, `["wifi"]`),
				room("102", domain.RoomDouble, 4000, 2, `["wifi","tv"]`),
				room("201", domain.RoomDeluxe, 6500, 3, `["wifi","tv","minibar"]`),
				room("301", domain.RoomSuite, 12000, 4, `["wifi","tv","minibar","lake view"]`),
			},
		},
		{
			hotel: domain.Hotel{
				Name: "Harbour Inn", City: "Kochi", Country: "India",
				Address: "Marine Drive", Rating: 4.1,
				CheckInTime: "12:00", CheckOutTime: "10:00", IsActive: true,
			},
			rooms: []domain.Room{
				room("1", domain.RoomDouble, 3200, 2, `["wifi"]`),
				room("2", domain.RoomFamily, 5200, 5, `["wifi","kitchenette"]`),
			},
		},
	}
}

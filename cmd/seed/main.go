package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"inkbook/internal/config"
	"inkbook/internal/database"
	"inkbook/internal/domain"
	"inkbook/internal/repository"
)

// Seeds a local database with a studio, an artist with weekday hours,
// and a tiered commission rule so the API is explorable right away.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}
	if err := database.EnsureBookingConstraints(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	studios := repository.NewStudioRepository(db)
	artists := repository.NewArtistRepository(db)
	avail := repository.NewAvailabilityRepository(db)
	commissions := repository.NewCommissionRepository(db)

	owner := seedUser(ctx, users, "owner@inkbook.dev", "Mara Volkov", domain.RoleStudioOwner)
	artistUser := seedUser(ctx, users, "artist@inkbook.dev", "Dario Flores", domain.RoleArtist)
	seedUser(ctx, users, "client@inkbook.dev", "Sam Veld", domain.RoleClient)

	studio := &domain.Studio{
		OwnerID:                owner.ID,
		Name:                   "Iron Lotus Tattoo",
		Address:                "14 Canal St",
		City:                   "Rotterdam",
		Timezone:               "Europe/Amsterdam",
		FullRefundLeadHours:    168,
		PartialRefundLeadHours: 48,
		PartialRefundBP:        5000,
	}
	if err := studios.Create(ctx, studio); err != nil {
		log.Fatal(err)
	}

	artist := &domain.Artist{
		StudioID:  studio.ID,
		UserID:    artistUser.ID,
		Name:      "Dario Flores",
		Specialty: "blackwork",
		Active:    true,
	}
	if err := artists.Create(ctx, artist); err != nil {
		log.Fatal(err)
	}

	// Tuesday through Saturday, 10:00-18:00.
	for day := 2; day <= 6; day++ {
		rule := &domain.AvailabilityRule{
			ArtistID:  artist.ID,
			DayOfWeek: day,
			StartTime: "10:00",
			EndTime:   "18:00",
			Active:    true,
		}
		if err := avail.CreateRule(ctx, rule); err != nil {
			log.Fatal(err)
		}
	}

	tiers, _ := json.Marshal([]domain.CommissionTier{
		{UpToCents: 30000, RateBP: 4000},
		{UpToCents: 0, RateBP: 3000},
	})
	rule := &domain.CommissionRule{
		StudioID: studio.ID,
		Kind:     domain.CommissionTiered,
		Tiers:    tiers,
		Active:   true,
	}
	if err := commissions.CreateRule(ctx, rule); err != nil {
		log.Fatal(err)
	}

	log.Printf("Seeded studio %d with artist %d at %s", studio.ID, artist.ID, time.Now().Format(time.RFC3339))
	log.Println("Accounts: owner@inkbook.dev / artist@inkbook.dev / client@inkbook.dev (password: inkbook-dev)")
}

func seedUser(ctx context.Context, users *repository.UserRepository, email, name string, role domain.Role) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("inkbook-dev"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatal(err)
	}
	return u
}

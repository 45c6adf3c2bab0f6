// Command seed prepares a postgres backend: it creates the admin account and,
// when the catalog is empty, the default services.
package main

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"lavapp/pkg/config"
	"lavapp/pkg/database"
	"lavapp/pkg/logger"
	"lavapp/pkg/models"
	"lavapp/pkg/repository"
	"lavapp/pkg/repository/postgres"
)

const seedKey = "seed"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString(config.Banner(err))
		os.Exit(1)
	}
	logger.Setup(cfg.Environment)

	if cfg.Backend != config.BackendPostgres {
		logrus.Fatalf("seed only runs against the postgres backend (BACKEND=%s)", cfg.Backend)
	}

	db, err := database.InitDatabase(cfg)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer database.CloseDatabase()

	if err := postgres.Migrate(db); err != nil {
		logrus.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	auth := postgres.NewAuthClient(db, postgres.AuthConfig{
		Secret:   []byte(cfg.JWTSecret),
		Lifetime: cfg.TokenLifetime(),
		Timeout:  cfg.RemoteTimeout,
	}, repository.NewMemoryTokenStorage(), seedKey)

	seedAdmin(ctx, auth, cfg.AdminEmail, getEnv("SEED_ADMIN_PASSWORD", "admin123"))
	seedCatalog(ctx, postgres.NewStore(db, cfg.RemoteTimeout))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func seedAdmin(ctx context.Context, auth repository.AuthClient, email, password string) {
	_, _, err := auth.SignUp(ctx, email, password, repository.UserMetadata{Name: "Administrador"})
	if err != nil {
		logrus.Infof("Admin %s not created: %v", email, err)
		return
	}
	if err := auth.SignOut(ctx); err != nil {
		logrus.Warnf("⚠️ Could not close seed session: %v", err)
	}
	logrus.Infof("✅ Admin %s created successfully", email)
}

func seedCatalog(ctx context.Context, store repository.ServiceRepository) {
	existing, err := store.ListServices(ctx)
	if err != nil {
		logrus.Fatal("Failed to list services: ", err)
	}
	if len(existing) > 0 {
		logrus.Infof("Catalog already has %d services", len(existing))
		return
	}

	for _, service := range defaultCatalog() {
		if _, err := store.CreateService(ctx, service); err != nil {
			logrus.Fatalf("Failed to create service %s: %v", service.Name, err)
		}
	}
	logrus.Infof("✅ Seeded %d services", len(defaultCatalog()))
}

func service(name, description, price string, category models.ServiceCategory, availability models.Availability) models.Service {
	return models.Service{
		Name:         name,
		Description:  description,
		Price:        decimal.RequireFromString(price),
		Category:     category,
		Availability: availability,
	}
}

func defaultCatalog() []models.Service {
	return []models.Service{
		service("Plano Essencial", "4 cestos por mês", "149.90", models.CategoryPlan, models.AvailabilityPlanOnly),
		service("Plano Família", "8 cestos por mês", "269.90", models.CategoryPlan, models.AvailabilityPlanOnly),
		service("Plano Premium", "12 cestos por mês com passadoria", "389.90", models.CategoryPlan, models.AvailabilityPlanOnly),
		service("Cesto Lavar e Secar", "Até 7kg de roupas", "49.90", models.CategoryBase, models.AvailabilityOneOffOnly),
		service("Passadoria", "Roupas passadas e dobradas", "19.90", models.CategoryExtra, models.AvailabilityBoth),
		service("Amaciante Premium", "Fragrância de longa duração", "9.90", models.CategoryExtra, models.AvailabilityOneOffOnly),
		service("Coleta Expressa", "Coleta no mesmo dia", "14.90", models.CategoryExtra, models.AvailabilityPlanOnly),
		service("Edredom", "Lavagem de edredom casal", "59.90", models.CategorySpecialCare, models.AvailabilityOneOffOnly),
		service("Tênis", "Higienização de tênis", "39.90", models.CategorySpecialCare, models.AvailabilityOneOffOnly),
		service("Cabides", "Roupas entregues em cabides", "7.90", models.CategoryPackaging, models.AvailabilityBoth),
		service("Dobradas em Sacola", "Roupas dobradas em sacola reutilizável", "0", models.CategoryPackaging, models.AvailabilityBoth),
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"kos-backend-trusted/internal/config"
	"kos-backend-trusted/internal/domain"
	"kos-backend-trusted/internal/logger"
	"kos-backend-trusted/internal/service"
	"kos-backend-trusted/internal/storage"
)

type Payment struct {
	Method string `yaml:"method"`
	Date   string `yaml:"date"`
}

type Booking struct {
	Room       string          `yaml:"room"`
	TenantName string          `yaml:"tenant_name"`
	Phone      string          `yaml:"phone"`
	CheckIn    string          `yaml:"check_in"`
	CheckOut   string          `yaml:"check_out"`
	RentalMode string          `yaml:"rental_mode"`
	DailyRate  int64           `yaml:"daily_rate"`
	Vehicle    *domain.Vehicle `yaml:"vehicle"`
	Payment    *Payment        `yaml:"payment"`
}

type SetupData struct {
	ConfigFile string    `yaml:"config_file"`
	Today      string    `yaml:"today"`
	Bookings   []Booking `yaml:"bookings"`
}

func main() {
	setupFile := flag.String("file", "config/seed.example.yaml", "Seed data file")
	flag.Parse()

	setupData, err := readSetupFile(resolvePath(*setupFile))
	if err != nil {
		log.Fatalf("Failed to read setup file: %v", err)
	}

	cfg, err := config.Load(resolvePath(setupData.ConfigFile))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	now := time.Now
	if setupData.Today != "" {
		pinned, err := time.ParseInLocation("2006-01-02", setupData.Today, cfg.Location())
		if err != nil {
			log.Fatalf("Invalid today %q: %v", setupData.Today, err)
		}
		now = func() time.Time { return pinned.Add(12 * time.Hour) }
	}

	services := service.New(service.Deps{
		Store:         store,
		Location:      cfg.Location(),
		Now:           now,
		UpfrontMethod: cfg.Business.UpfrontMethod,
	})

	if _, err := services.Inventory.ProvisionRooms(ctx, cfg.Rooms()); err != nil {
		log.Fatalf("Failed to provision rooms: %v", err)
	}
	if err := populateData(ctx, services, setupData); err != nil {
		log.Fatalf("Failed to populate data: %v", err)
	}

	log.Println("Seed data successfully populated")
}

func readSetupFile(filename string) (*SetupData, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var setupData SetupData
	if err := yaml.Unmarshal(data, &setupData); err != nil {
		return nil, err
	}

	return &setupData, nil
}

// resolvePath tries p as given, then relative to the project root.
func resolvePath(p string) string {
	if _, err := os.Stat(p); err == nil {
		return p
	}

	fullPath := filepath.Join(findProjectRoot(), p)
	if _, err := os.Stat(fullPath); err == nil {
		return fullPath
	}

	// Return original path and let it fail with a clear error
	return p
}

func findProjectRoot() string {
	// Look for go.mod to identify project root
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "."
}

// populateData replays each booking, and its payment if any, through the
// services so seeded data obeys the same rules as front-desk input.
func populateData(ctx context.Context, services *service.Services, data *SetupData) error {
	for i, b := range data.Bookings {
		log.Printf("Booking %d/%d: %s in %s", i+1, len(data.Bookings), b.TenantName, b.Room)

		req := service.BookingRequest{
			TenantName:        b.TenantName,
			Phone:             b.Phone,
			CheckIn:           b.CheckIn,
			RentalMode:        domain.RentalMode(b.RentalMode),
			OverrideDailyRate: b.DailyRate,
			Vehicle:           b.Vehicle,
		}
		if b.CheckOut != "" {
			checkOut := b.CheckOut
			req.CheckOut = &checkOut
		}

		tenant, _, err := services.Tenancy.CreateBooking(ctx, b.Room, req)
		if err != nil {
			return fmt.Errorf("failed to book %s into %s: %w", b.TenantName, b.Room, err)
		}

		if b.Payment != nil {
			_, err := services.Payments.RecordPayment(ctx, tenant.ID, service.PaymentRequest{
				Method: b.Payment.Method,
				Date:   b.Payment.Date,
			})
			if err != nil {
				return fmt.Errorf("failed to record payment for %s: %w", b.TenantName, err)
			}
		}
		log.Printf("  Tenant %s: %s, owes %d", tenant.ID, tenant.PaymentStatus, tenant.AmountOwed)
	}
	return nil
}

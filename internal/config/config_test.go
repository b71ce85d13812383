package config

import (
	"os"
	"path/filepath"
	"testing"

	"kos-backend-trusted/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 0, cfg.Server.GRPCPort)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "UTC", cfg.Business.Timezone)
	assert.Equal(t, domain.PaymentMethodUpfront, cfg.Business.UpfrontMethod)
	assert.Equal(t, "0 5 0 * * *", cfg.Scheduler.PromoteDueBookings)
	assert.NotEmpty(t, cfg.Scheduler.OpenMonthlyCharges)
	assert.NotEmpty(t, cfg.Scheduler.ReportOverdueStays)
}

func TestParse_Inventory(t *testing.T) {
	data := []byte(`
inventory:
  - { number: A03, category: SHORT_STAY, base_rate: 250000, facilities: [AC, WiFi] }
  - { number: B01, category: LONG_STAY, base_rate: 800000, floor: 2 }
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	rooms := cfg.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, domain.RoomCategoryShortStay, rooms[0].Category)
	assert.Equal(t, int32(1), rooms[0].Floor)
	assert.Equal(t, []string{"AC", "WiFi"}, rooms[0].Facilities)
	assert.Equal(t, int32(2), rooms[1].Floor)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"Bad http port", "server: { http_port: 70000 }", "invalid http port"},
		{"Unknown driver", "storage: { driver: mongo }", "unknown storage driver"},
		{"Postgres without host", "storage: { driver: postgres }", "database host is required"},
		{"Bad timezone", "business: { timezone: Mars/Olympus }", "invalid business timezone"},
		{"Bad category", "inventory: [{ number: X1, category: SUITE, base_rate: 1 }]", "invalid category"},
		{"Zero rate", "inventory: [{ number: X1, category: LONG_STAY }]", "base rate must be positive"},
		{"Duplicate number", "inventory: [{ number: X1, category: LONG_STAY, base_rate: 1 }, { number: X1, category: SHORT_STAY, base_rate: 1 }]", "duplicate room number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: { driver: postgres }\ndatabase: { host: db, user: kos, database: kos }\n"), 0o600))

	t.Setenv("DB_HOST", "override-host")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BUSINESS_TIMEZONE", "Asia/Jakarta")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "override-host", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
	assert.Equal(t, "postgres://kos:@override-host:5432/kos?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

package geocoding

import (
	"log"

	"github.com/ThreatAtlas/atlas-backend/internal/db"
)

// Init creates the lookup cache table.
func Init() {
	if err := db.EnsureSchema(db.DB, "atlas"); err != nil {
		log.Fatal("Failed to ensure schema atlas: ", err)
	}

	if err := db.DB.AutoMigrate(&CountryLookup{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}

package actors

import (
	"log"

	"github.com/ThreatAtlas/atlas-backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "atlas"); err != nil {
		log.Fatal("Failed to ensure schema atlas: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension:", err)
	}

	if err := db.DB.AutoMigrate(&Actor{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}

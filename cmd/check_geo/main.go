package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ThreatAtlas/atlas-backend/internal/actors"
	"github.com/ThreatAtlas/atlas-backend/internal/config"
	"github.com/ThreatAtlas/atlas-backend/internal/geo"
	"github.com/ThreatAtlas/atlas-backend/internal/geocoding"
	"github.com/ThreatAtlas/atlas-backend/internal/geography"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	lat = flag.Float64("lat", 0, "Latitude to resolve")
	lng = flag.Float64("lng", 0, "Longitude to resolve")
)

func main() {
	godotenv.Load(".env.local")
	flag.Parse()

	cfg := config.LoadFromEnv()

	aliases, continents, err := geography.LoadTables(cfg.AliasTablePath, cfg.ContinentTablePath)
	if err != nil {
		log.Fatalf("Table error: %v", err)
	}

	continent := continents.FromCoordinates(*lng, *lat)
	if continent == geo.Unknown {
		fmt.Printf("(%.4f, %.4f) is outside every continent outline\n", *lat, *lng)
	} else {
		fmt.Printf("Continent: %s\n", continent)
	}

	country := ""
	client, err := geocoding.NewClient(cfg.Geocoder)
	if err != nil {
		log.Fatalf("Geocoder config error: %v", err)
	}
	if client != nil {
		country, err = client.ReverseCountry(context.Background(), *lat, *lng)
		if err != nil {
			fmt.Printf("Country lookup failed: %v\n", err)
		} else {
			fmt.Printf("Country: %s (%s)\n", country, geocoding.CountryCode(country))
		}
	}

	if cfg.DatabaseURL == "" {
		fmt.Println("\nDATABASE_URL not set, skipping actor listing.")
		os.Exit(0)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	list, err := actors.NewStore(db).ListActors(context.Background())
	if err != nil {
		log.Fatalf("Query error: %v", err)
	}
	points := geography.BuildPoints(list, aliases)
	fmt.Printf("\nMapped actors: %d of %d\n\n", len(points), len(list))

	var inCountry, inContinent []geography.GeoPoint
	for _, p := range points {
		if country != "" && geocoding.SameCountry(p.Country, country) {
			inCountry = append(inCountry, p)
		}
		if continent != geo.Unknown && p.Region == continent {
			inContinent = append(inContinent, p)
		}
	}

	if country != "" {
		fmt.Printf("=== %s (%d) ===\n", country, len(inCountry))
		for _, p := range inCountry {
			fmt.Printf("  - %s | %s | %s\n", p.Name, p.Place, p.Status)
		}
		fmt.Println()
	}
	if continent != geo.Unknown {
		fmt.Printf("=== %s (%d) ===\n", continent, len(inContinent))
		for _, p := range inContinent {
			fmt.Printf("  - %s | %s | %s\n", p.Name, p.Place, p.Status)
		}
	}
}

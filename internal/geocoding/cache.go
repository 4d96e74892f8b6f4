package geocoding

import (
	"context"
	"errors"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CountryLookup is a cached reverse lookup for one geohash cell.
type CountryLookup struct {
	Cell        string    `gorm:"primaryKey;size:32" json:"cell"`
	Country     string    `gorm:"not null" json:"country"`
	LastFetched time.Time `json:"last_fetched"`
}

func (CountryLookup) TableName() string {
	return "atlas.country_lookups"
}

// Reverser is anything that resolves a coordinate to a country name.
type Reverser interface {
	ReverseCountry(ctx context.Context, lat, lng float64) (string, error)
}

// CachedClient keeps successful lookups in Postgres, keyed by a geohash
// cell, and only calls the upstream when the cell is missing or older than
// the TTL. Failures are never cached.
type CachedClient struct {
	next Reverser
	db   *gorm.DB
	ttl  time.Duration
	now  func() time.Time
}

func NewCachedClient(next Reverser, db *gorm.DB, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, db: db, ttl: ttl, now: time.Now}
}

// cellPrecision is the geohash length of a cache cell (about 4.9 km).
const cellPrecision = 5

// cellKey returns the geohash cell a coordinate falls in.
func cellKey(lat, lng float64) string {
	return geohash.Encode(lat, lng)[:cellPrecision]
}

func (c *CachedClient) ReverseCountry(ctx context.Context, lat, lng float64) (string, error) {
	key := cellKey(lat, lng)

	var row CountryLookup
	err := c.db.WithContext(ctx).First(&row, "cell = ?", key).Error
	switch {
	case err == nil && c.now().Sub(row.LastFetched) < c.ttl:
		logCacheHit(key, row.Country)
		return row.Country, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		logError("cache read", err)
	}

	country, err := c.next.ReverseCountry(ctx, lat, lng)
	if err != nil {
		return "", err
	}

	row = CountryLookup{Cell: key, Country: country, LastFetched: c.now()}
	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cell"}},
		DoUpdates: clause.Assignments(map[string]any{"country": country, "last_fetched": row.LastFetched}),
	}).Create(&row).Error; err != nil {
		logError("cache write", err)
	}
	return country, nil
}

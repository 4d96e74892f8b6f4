package geocoding

import (
	"log"
	"time"
)

func logResponse(lat, lng float64, statusCode int, duration time.Duration, country string) {
	log.Printf("[geocoding] reverse lat=%.4f lng=%.4f status=%d duration=%dms country=%q",
		lat, lng, statusCode, duration.Milliseconds(), country)
}

func logError(operation string, err error) {
	log.Printf("[geocoding] %s error: %v", operation, err)
}

func logCacheHit(cell, country string) {
	log.Printf("[geocoding] cache hit cell=%s country=%q", cell, country)
}

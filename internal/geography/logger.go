package geography

import (
	"log"

	"github.com/google/uuid"
)

func logSessionOpened(id uuid.UUID, points int) {
	log.Printf("[geography] session %s opened with %d mapped actors", id, points)
}

func logListUnavailable(id uuid.UUID, err error) {
	log.Printf("[geography] session %s actor list unavailable: %v", id, err)
}

func logLookupApplied(id uuid.UUID, p Pending, country string) {
	log.Printf("[geography] session %s gen=%d lat=%.4f lng=%.4f country=%q", id, p.Generation, p.Lat, p.Lng, country)
}

func logLookupDegraded(id uuid.UUID, p Pending, err error) {
	log.Printf("[geography] session %s gen=%d lat=%.4f lng=%.4f continent=%q lookup unavailable: %v",
		id, p.Generation, p.Lat, p.Lng, p.Continent, err)
}

func logStale(id uuid.UUID, got, current uint64) {
	log.Printf("[geography] session %s dropped stale lookup gen=%d current=%d", id, got, current)
}

func logTrackFailed(id uuid.UUID, actorID string, err error) {
	log.Printf("[geography] session %s track %s failed: %v", id, actorID, err)
}

func logUncoveredRegion(region string) {
	log.Printf("[geography] alias region %q has no continent outline; map clicks never list it", region)
}

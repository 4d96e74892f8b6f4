package geography

import "github.com/paulmach/orb"

// Cluster groups points that share an exact coordinate. Coordinates come
// straight from the alias table, so exact float equality is intended.
type Cluster struct {
	Key     orb.Point
	Members []GeoPoint
	Status  Status
}

// Marker is what the map renderer needs for one cluster.
type Marker struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
	Status    Status  `json:"status"`
	Count     int     `json:"count"`
	Tracked   int     `json:"tracked"`
	Place     string  `json:"place"`
}

// BuildClusters groups points by exact coordinate.
func BuildClusters(points []GeoPoint) map[orb.Point]*Cluster {
	out := make(map[orb.Point]*Cluster)
	for _, p := range points {
		k := p.Key()
		c, ok := out[k]
		if !ok {
			c = &Cluster{Key: k}
			out[k] = c
		}
		c.Members = append(c.Members, p)
	}
	for _, c := range out {
		c.Status = ClusterStatus(c.Members)
	}
	return out
}

// Markers returns one marker per cluster, ordered by the first point that
// landed on each coordinate.
func Markers(points []GeoPoint) []Marker {
	clusters := BuildClusters(points)
	out := make([]Marker, 0, len(clusters))
	seen := make(map[orb.Point]bool, len(clusters))
	for _, p := range points {
		k := p.Key()
		if seen[k] {
			continue
		}
		seen[k] = true

		c := clusters[k]
		tracked := 0
		for _, m := range c.Members {
			if m.IsTracked {
				tracked++
			}
		}
		out = append(out, Marker{
			Longitude: k.Lon(),
			Latitude:  k.Lat(),
			Status:    c.Status,
			Count:     len(c.Members),
			Tracked:   tracked,
			Place:     c.Members[0].Place,
		})
	}
	return out
}

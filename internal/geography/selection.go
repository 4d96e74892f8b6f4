package geography

// Kind names the list source currently driving the side panel.
type Kind string

const (
	KindNone      Kind = "none"
	KindContinent Kind = "continent"
	KindCountry   Kind = "country"
	KindCluster   Kind = "cluster"
)

// Selection is the drill-down focus. At most one list source is active,
// chosen by Kind; ActorID is an independent detail overlay.
//
// Transitions return a new value and never mutate the receiver.
type Selection struct {
	Kind         Kind     `json:"kind"`
	Continent    string   `json:"continent,omitempty"`
	Country      string   `json:"country,omitempty"`
	ClusterIDs   []string `json:"cluster_ids,omitempty"`
	ClusterPlace string   `json:"cluster_place,omitempty"`
	ActorID      string   `json:"actor_id,omitempty"`

	// Pending is set while a country lookup for the latest click is out.
	Pending bool `json:"pending"`
	// Degraded marks a continent selection whose country lookup failed.
	Degraded bool `json:"degraded"`
}

func NewSelection() Selection {
	return Selection{Kind: KindNone}
}

// MapClick enters continent granularity for a fresh click. Any cluster pick
// and actor detail are dropped.
func (s Selection) MapClick(continent string) Selection {
	return Selection{Kind: KindContinent, Continent: continent, Pending: true}
}

// ApplyCountry refines a pending continent selection to a country. The
// continent stays as context.
func (s Selection) ApplyCountry(country string) Selection {
	return Selection{
		Kind:      KindCountry,
		Continent: s.Continent,
		Country:   country,
		ActorID:   s.ActorID,
	}
}

// LookupFailed keeps continent granularity and flags it as degraded.
func (s Selection) LookupFailed() Selection {
	s.Pending = false
	s.Degraded = true
	return s
}

// PickSingleton focuses a lone marker: its country becomes the list source and
// the point itself is opened in detail.
func (s Selection) PickSingleton(p GeoPoint) Selection {
	return Selection{
		Kind:      KindCountry,
		Continent: p.Region,
		Country:   p.Country,
		ActorID:   p.ID,
	}
}

// PickCluster lists the members of a multi-actor marker.
func (s Selection) PickCluster(c *Cluster) Selection {
	ids := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.ID)
	}
	place := ""
	if len(c.Members) > 0 {
		place = c.Members[0].Place
	}
	return Selection{Kind: KindCluster, ClusterIDs: ids, ClusterPlace: place}
}

// PickActor opens an actor in detail without touching the list source.
func (s Selection) PickActor(id string) Selection {
	s = s.clone()
	s.ActorID = id
	return s
}

func (s Selection) clone() Selection {
	s.ClusterIDs = append([]string(nil), s.ClusterIDs...)
	return s
}

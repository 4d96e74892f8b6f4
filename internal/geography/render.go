package geography

import (
	"strings"

	"github.com/ThreatAtlas/atlas-backend/internal/geocoding"
)

// ListItem is one row of the side panel list.
type ListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Place     string `json:"place"`
	Status    Status `json:"status"`
	IsTracked bool   `json:"is_tracked"`
}

// ActorDetail is the detail panel payload.
type ActorDetail struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	Place     string `json:"place"`
	Region    string `json:"region"`
	Summary   string `json:"summary"`
	Status    Status `json:"status"`
	IsTracked bool   `json:"is_tracked"`
}

// Snapshot is everything the UI needs to draw the view.
type Snapshot struct {
	SessionID  string       `json:"session_id"`
	Generation uint64       `json:"generation"`
	Selection  Selection    `json:"selection"`
	Title      string       `json:"title"`
	Hint       string       `json:"hint"`
	Items      []ListItem   `json:"items"`
	Detail     *ActorDetail `json:"detail,omitempty"`
	Markers    []Marker     `json:"markers"`
	Notices    []Notice     `json:"notices"`
}

const noSummary = "No summary available for this actor yet."

// Snapshot renders the view as it stands.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	rows := listRows(v.points, v.sel)
	title, hint := headline(v.sel, len(rows))

	snap := Snapshot{
		SessionID:  v.ID.String(),
		Generation: v.generation,
		Selection:  v.sel.clone(),
		Title:      title,
		Hint:       hint,
		Items:      make([]ListItem, 0, len(rows)),
		Markers:    Markers(v.points),
		Notices:    []Notice{},
	}
	for _, p := range rows {
		snap.Items = append(snap.Items, ListItem{
			ID:        p.ID,
			Name:      p.Name,
			Place:     p.Place,
			Status:    p.Status,
			IsTracked: p.IsTracked,
		})
	}
	if v.sel.ActorID != "" {
		if p, ok := v.findPoint(v.sel.ActorID); ok {
			snap.Detail = detailFor(p)
		}
	}
	if v.listFailed {
		snap.Notices = append(snap.Notices, listUnavailable)
	}
	if v.sel.Degraded {
		snap.Notices = append(snap.Notices, lookupUnavailable)
	}
	return snap
}

func listRows(points []GeoPoint, sel Selection) []GeoPoint {
	var out []GeoPoint
	switch sel.Kind {
	case KindCountry:
		for _, p := range points {
			if geocoding.SameCountry(p.Country, sel.Country) {
				out = append(out, p)
			}
		}
	case KindContinent:
		if sel.Continent == "" {
			return nil
		}
		for _, p := range points {
			if p.Region == sel.Continent {
				out = append(out, p)
			}
		}
	case KindCluster:
		byID := make(map[string]GeoPoint, len(points))
		for _, p := range points {
			byID[p.ID] = p
		}
		for _, id := range sel.ClusterIDs {
			if p, ok := byID[id]; ok {
				out = append(out, p)
			}
		}
	}
	return out
}

func headline(sel Selection, rows int) (string, string) {
	switch sel.Kind {
	case KindCountry:
		if rows > 0 {
			return "Country: " + sel.Country, "Actors with confirmed mapping to this country."
		}
		return "Country: " + sel.Country, "No mapped actors in this country. Try a nearby location or continent-level selection."
	case KindContinent:
		name := sel.Continent
		if name == "" {
			name = "Unknown"
		}
		title := "Continent: " + name
		switch {
		case sel.Pending:
			return title, "Resolving country selection..."
		case sel.Degraded:
			return title, lookupUnavailable.Message
		case rows > 0:
			return title, "Actors with confirmed mapping to this continent."
		default:
			return title, "No mapped actors currently in this continent."
		}
	case KindCluster:
		return "Cluster: " + sel.ClusterPlace, "Several actors share this location. Pick one for details."
	default:
		return "Select a location", "Click a country on the map. If country resolution fails, continent selection is used."
	}
}

func detailFor(p GeoPoint) *ActorDetail {
	summary := strings.TrimSpace(p.Summary)
	if summary == "" {
		summary = noSummary
	}
	return &ActorDetail{
		ID:        p.ID,
		Name:      p.Name,
		Country:   p.Country,
		Place:     p.Place,
		Region:    p.Region,
		Summary:   summary,
		Status:    p.Status,
		IsTracked: p.IsTracked,
	}
}

package geography

import "testing"

func TestSelectionMapClickDropsDetail(t *testing.T) {
	s := NewSelection().PickActor("a1")
	got := s.MapClick("Europe")

	if got.Kind != KindContinent || got.Continent != "Europe" || !got.Pending {
		t.Errorf("MapClick = %+v", got)
	}
	if got.ActorID != "" {
		t.Errorf("actor detail survived a map click: %q", got.ActorID)
	}
	if s.ActorID != "a1" {
		t.Error("MapClick mutated its receiver")
	}
}

func TestSelectionApplyCountry(t *testing.T) {
	s := NewSelection().MapClick("Middle East").PickActor("a1")
	got := s.ApplyCountry("Iran")

	if got.Kind != KindCountry || got.Country != "Iran" {
		t.Errorf("ApplyCountry = %+v", got)
	}
	if got.Continent != "Middle East" {
		t.Errorf("continent context lost: %q", got.Continent)
	}
	if got.ActorID != "a1" {
		t.Errorf("actor overlay lost: %q", got.ActorID)
	}
	if got.Pending || got.Degraded {
		t.Errorf("pending=%v degraded=%v after apply", got.Pending, got.Degraded)
	}
}

func TestSelectionLookupFailed(t *testing.T) {
	got := NewSelection().MapClick("Africa").LookupFailed()
	if got.Kind != KindContinent || got.Continent != "Africa" {
		t.Errorf("LookupFailed changed the list source: %+v", got)
	}
	if got.Pending || !got.Degraded {
		t.Errorf("pending=%v degraded=%v, want false/true", got.Pending, got.Degraded)
	}
}

func TestSelectionPickSingleton(t *testing.T) {
	p := GeoPoint{ID: "a9", Country: "North Korea", Region: "APAC"}
	got := NewSelection().MapClick("Europe").PickSingleton(p)

	if got.Kind != KindCountry || got.Country != "North Korea" || got.Continent != "APAC" {
		t.Errorf("PickSingleton = %+v", got)
	}
	if got.ActorID != "a9" {
		t.Errorf("actor = %q, want a9", got.ActorID)
	}
	if got.Pending {
		t.Error("singleton pick left the selection pending")
	}
}

func TestSelectionPickCluster(t *testing.T) {
	c := &Cluster{Members: []GeoPoint{{ID: "a1", Place: "Russia"}, {ID: "a2", Place: "Russia"}}}
	got := NewSelection().PickActor("x").PickCluster(c)

	if got.Kind != KindCluster || got.ClusterPlace != "Russia" {
		t.Errorf("PickCluster = %+v", got)
	}
	if len(got.ClusterIDs) != 2 || got.ClusterIDs[0] != "a1" || got.ClusterIDs[1] != "a2" {
		t.Errorf("cluster ids = %v", got.ClusterIDs)
	}
	if got.ActorID != "" || got.Country != "" || got.Continent != "" {
		t.Errorf("cluster pick kept other sources: %+v", got)
	}
}

func TestSelectionPickActorKeepsSource(t *testing.T) {
	c := &Cluster{Members: []GeoPoint{{ID: "a1"}, {ID: "a2"}}}
	s := NewSelection().PickCluster(c)
	got := s.PickActor("a2")

	if got.Kind != KindCluster || len(got.ClusterIDs) != 2 {
		t.Errorf("PickActor changed the list source: %+v", got)
	}
	if got.ActorID != "a2" {
		t.Errorf("actor = %q", got.ActorID)
	}

	got.ClusterIDs[0] = "mutated"
	if s.ClusterIDs[0] != "a1" {
		t.Error("PickActor shares cluster ids with its receiver")
	}
}

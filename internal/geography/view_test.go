package geography

import (
	"context"
	"errors"
	"testing"
	"time"
)

const (
	moscowLat, moscowLng = 55.7, 37.6
	tehranLat, tehranLng = 35.7, 51.4
	kyivLat, kyivLng     = 50.45, 30.5
)

func resolveAsync(v *View, p Pending) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() { out <- v.Resolve(context.Background(), p) }()
	return out
}

func waitOutcome(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("lookup did not settle")
		return ""
	}
}

func itemIDs(s Snapshot) []string {
	ids := make([]string, len(s.Items))
	for i, it := range s.Items {
		ids[i] = it.ID
	}
	return ids
}

func TestOutOfOrderLookupsKeepLatestClick(t *testing.T) {
	g := newGatedGeocoder()
	env := newTestEnv(t, g)
	v := env.openView(t)

	first, err := v.Click(moscowLat, moscowLng)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	second, err := v.Click(tehranLat, tehranLng)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if first.Continent != "Europe" || second.Continent != "Middle East" {
		t.Fatalf("continents = %q, %q", first.Continent, second.Continent)
	}
	if second.Generation <= first.Generation {
		t.Fatalf("generation did not advance: %d then %d", first.Generation, second.Generation)
	}

	firstDone := resolveAsync(v, first)
	secondDone := resolveAsync(v, second)

	g.release(tehranLat, "Iran", nil)
	if got := waitOutcome(t, secondDone); got != OutcomeApplied {
		t.Fatalf("latest lookup = %s, want applied", got)
	}
	g.release(moscowLat, "Russia", nil)
	if got := waitOutcome(t, firstDone); got != OutcomeStale {
		t.Fatalf("earlier lookup = %s, want stale", got)
	}

	snap := v.Snapshot()
	sel := snap.Selection
	if sel.Kind != KindCountry || sel.Country != "Iran" || sel.Continent != "Middle East" {
		t.Errorf("selection = %+v, want Iran in Middle East", sel)
	}
	if ids := itemIDs(snap); len(ids) != 1 || ids[0] != idMuddy.String() {
		t.Errorf("items = %v, want MuddyWater only", ids)
	}
	if snap.Title != "Country: Iran" {
		t.Errorf("title = %q", snap.Title)
	}
}

func TestClickShowsContinentWhilePending(t *testing.T) {
	g := newGatedGeocoder()
	env := newTestEnv(t, g)
	v := env.openView(t)

	p, err := v.Click(moscowLat, moscowLng)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	snap := v.Snapshot()
	if !snap.Selection.Pending || snap.Selection.Continent != "Europe" {
		t.Errorf("selection = %+v, want pending Europe", snap.Selection)
	}
	if snap.Hint != "Resolving country selection..." {
		t.Errorf("hint = %q", snap.Hint)
	}
	want := []string{idFancy.String(), idCozy.String(), idSandworm.String()}
	got := itemIDs(snap)
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %s, want %s", i, got[i], want[i])
		}
	}

	done := resolveAsync(v, p)
	g.release(moscowLat, "Russia", nil)
	if o := waitOutcome(t, done); o != OutcomeApplied {
		t.Fatalf("outcome = %s", o)
	}
	if ids := itemIDs(v.Snapshot()); len(ids) != 2 {
		t.Errorf("Russia items = %v, want the two Moscow actors", ids)
	}
}

func TestLookupDegradesToContinent(t *testing.T) {
	tests := []struct {
		name string
		geo  Geocoder
	}{
		{"no geocoder", nil},
		{"geocoder error", staticGeocoder{err: errors.New("HTTP 503")}},
		{"empty country", staticGeocoder{country: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.geo)
			v := env.openView(t)

			p, err := v.Click(kyivLat, kyivLng)
			if err != nil {
				t.Fatalf("Click: %v", err)
			}
			if o := v.Resolve(context.Background(), p); o != OutcomeDegraded {
				t.Fatalf("outcome = %s, want degraded", o)
			}

			snap := v.Snapshot()
			if snap.Selection.Kind != KindContinent || snap.Selection.Continent != "Europe" {
				t.Errorf("selection = %+v", snap.Selection)
			}
			if len(snap.Items) != 3 {
				t.Errorf("items = %v, want the three European actors", itemIDs(snap))
			}
			if len(snap.Notices) != 1 || snap.Notices[0].Code != NoticeLookupUnavailable {
				t.Errorf("notices = %+v", snap.Notices)
			}
		})
	}
}

func TestLookupTimeoutDegrades(t *testing.T) {
	env := newTestEnv(t, newGatedGeocoder())
	v := env.openView(t)

	p, _ := v.Click(moscowLat, moscowLng)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if o := v.Resolve(ctx, p); o != OutcomeDegraded {
		t.Errorf("outcome = %s, want degraded", o)
	}
}

func TestClickUnknownContinent(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.openView(t)

	p, err := v.Click(0, -30)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if p.Continent != "" {
		t.Fatalf("continent = %q, want unknown", p.Continent)
	}
	v.Resolve(context.Background(), p)

	snap := v.Snapshot()
	if snap.Title != "Continent: Unknown" {
		t.Errorf("title = %q", snap.Title)
	}
	if len(snap.Items) != 0 {
		t.Errorf("items = %v, want none", itemIDs(snap))
	}
}

func TestClickRejectsBadCoordinate(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.openView(t)

	if _, err := v.Click(91, 0); !errors.Is(err, ErrBadCoordinate) {
		t.Errorf("err = %v, want ErrBadCoordinate", err)
	}
	if v.Generation() != 0 {
		t.Errorf("rejected click bumped the generation to %d", v.Generation())
	}
}

func TestMarkerPickSupersedesLookup(t *testing.T) {
	g := newGatedGeocoder()
	env := newTestEnv(t, g)
	v := env.openView(t)

	p, _ := v.Click(tehranLat, tehranLng)
	done := resolveAsync(v, p)

	if err := v.PickMarker(kyivLng, kyivLat); err != nil {
		t.Fatalf("PickMarker: %v", err)
	}
	g.release(tehranLat, "Iran", nil)
	if o := waitOutcome(t, done); o != OutcomeStale {
		t.Fatalf("outcome = %s, want stale", o)
	}

	snap := v.Snapshot()
	if snap.Selection.Country != "Ukraine" || snap.Selection.ActorID != idSandworm.String() {
		t.Errorf("selection = %+v, want Sandworm in Ukraine", snap.Selection)
	}
	if snap.Detail == nil || snap.Detail.Name != "Sandworm" {
		t.Errorf("detail = %+v", snap.Detail)
	}
}

func TestPickMarkerCluster(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.openView(t)

	if err := v.PickMarker(moscowLng, moscowLat); err != nil {
		t.Fatalf("PickMarker: %v", err)
	}
	snap := v.Snapshot()
	if snap.Selection.Kind != KindCluster {
		t.Fatalf("kind = %s, want cluster", snap.Selection.Kind)
	}
	if snap.Title != "Cluster: Russia" {
		t.Errorf("title = %q", snap.Title)
	}
	if len(snap.Items) != 2 || snap.Detail != nil {
		t.Errorf("items = %v detail = %+v", itemIDs(snap), snap.Detail)
	}

	if err := v.PickActor(idCozy.String()); err != nil {
		t.Fatalf("PickActor: %v", err)
	}
	snap = v.Snapshot()
	if snap.Selection.Kind != KindCluster || len(snap.Items) != 2 {
		t.Errorf("picking a member changed the list: %+v", snap.Selection)
	}
	if snap.Detail == nil || snap.Detail.Summary != noSummary {
		t.Errorf("detail = %+v, want summary fallback", snap.Detail)
	}
}

func TestPickMarkerMissing(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.openView(t)

	if err := v.PickMarker(0, 0); !errors.Is(err, ErrNoMarker) {
		t.Errorf("err = %v, want ErrNoMarker", err)
	}
	if err := v.PickActor(idUnmapped.String()); !errors.Is(err, ErrUnknownActor) {
		t.Errorf("err = %v, want ErrUnknownActor", err)
	}
}

func TestTrack(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.openView(t)
	if err := v.PickActor(idSandworm.String()); err != nil {
		t.Fatalf("PickActor: %v", err)
	}
	before := v.Selection()

	if err := v.Track(context.Background(), idSandworm.String()); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if calls := env.tracker.called(); len(calls) != 1 || calls[0] != idSandworm.String() {
		t.Errorf("tracker calls = %v", calls)
	}
	for _, p := range v.Points() {
		if p.ID == idSandworm.String() && !p.IsTracked {
			t.Error("point not flipped to tracked")
		}
	}
	if after := v.Selection(); after.ActorID != before.ActorID || after.Kind != before.Kind {
		t.Errorf("selection changed: %+v -> %+v", before, after)
	}
	if d := v.Snapshot().Detail; d == nil || !d.IsTracked {
		t.Errorf("detail = %+v, want tracked", d)
	}
}

func TestTrackFailureLeavesState(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tracker.fail(errBackend)
	v := env.openView(t)
	_ = v.PickMarker(kyivLng, kyivLat)
	before := v.Selection()

	err := v.Track(context.Background(), idSandworm.String())
	if !errors.Is(err, ErrMutationFailed) {
		t.Fatalf("err = %v, want ErrMutationFailed", err)
	}
	for _, p := range v.Points() {
		if p.ID == idSandworm.String() && p.IsTracked {
			t.Error("point flipped to tracked after a failed mutation")
		}
	}
	after := v.Selection()
	if after.Kind != before.Kind || after.Country != before.Country || after.ActorID != before.ActorID {
		t.Errorf("selection changed: %+v -> %+v", before, after)
	}
}

func TestTrackUnknownActor(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.openView(t)

	if err := v.Track(context.Background(), idUnmapped.String()); !errors.Is(err, ErrUnknownActor) {
		t.Errorf("err = %v, want ErrUnknownActor", err)
	}
	if calls := env.tracker.called(); len(calls) != 0 {
		t.Errorf("tracker called for an actor off the map: %v", calls)
	}
}

func TestReloadFailureShowsNotice(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.openView(t)
	if len(v.Points()) != 5 {
		t.Fatalf("points = %d, want 5", len(v.Points()))
	}

	env.source.fail(errBackend)
	if err := v.Reload(context.Background()); !errors.Is(err, errBackend) {
		t.Fatalf("Reload err = %v", err)
	}
	snap := v.Snapshot()
	if len(snap.Markers) != 0 || len(v.Points()) != 0 {
		t.Errorf("stale points kept after failed reload: %d markers", len(snap.Markers))
	}
	if len(snap.Notices) != 1 || snap.Notices[0].Code != NoticeListUnavailable {
		t.Errorf("notices = %+v", snap.Notices)
	}

	env.source.fail(nil)
	if err := v.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if snap := v.Snapshot(); len(snap.Notices) != 0 || len(snap.Markers) != 4 {
		t.Errorf("after recovery notices=%+v markers=%d", snap.Notices, len(snap.Markers))
	}
}

func TestInitialSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.openView(t)

	snap := v.Snapshot()
	if snap.Selection.Kind != KindNone || len(snap.Items) != 0 || snap.Detail != nil {
		t.Errorf("initial snapshot = %+v", snap)
	}
	if snap.Title != "Select a location" {
		t.Errorf("title = %q", snap.Title)
	}
	if len(snap.Markers) != 4 {
		t.Errorf("markers = %d, want 4", len(snap.Markers))
	}
}

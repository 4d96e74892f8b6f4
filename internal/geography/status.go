package geography

import "strings"

// Status is the three-level activity marker shown on the map.
type Status string

const (
	StatusActive  Status = "active"
	StatusQuiet   Status = "quiet"
	StatusDormant Status = "dormant"
)

// ActorStatus maps a raw notebook status onto a map status. Unknown and empty
// values are dormant.
func ActorStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ready", "running":
		return StatusActive
	case "warning":
		return StatusQuiet
	default:
		return StatusDormant
	}
}

// ClusterStatus picks the loudest member status: one active member makes the
// whole cluster active.
func ClusterStatus(members []GeoPoint) Status {
	quiet := false
	for _, m := range members {
		switch m.Status {
		case StatusActive:
			return StatusActive
		case StatusQuiet:
			quiet = true
		}
	}
	if quiet {
		return StatusQuiet
	}
	return StatusDormant
}

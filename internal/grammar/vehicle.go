package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

const (
	vehiclePrefix   = `^\[(?P<action>[^\]]+)\] (?P<vehicle>.+?)\. VehicleId: (?P<vid>\d+)\.`
	vehicleLocation = `(?: Location: X=(?P<x>\S+) Y=(?P<y>\S+) Z=(?P<z>\S+?))?\.?$`
)

var (
	// Matches: "[Destroyed] Wolfswagen_ES. VehicleId: 1234. Owner: 76561198086065370 (12, Urrgence). Location: X=1.0 Y=2.0 Z=3.0"
	// Captures: action, vehicle, vid, oid, name, x, y, z
	vehicleOwnedPattern = regexp.MustCompile(
		vehiclePrefix + ` Owner: (?P<oid>\d+) \((?P<n>\d+), (?P<name>.*?)\)\.` + vehicleLocation,
	)

	// Matches: "[Disappeared] Cruiser_ES. VehicleId: 99. Owner: N/A. Location: X=1.0 Y=2.0 Z=3.0"
	vehicleUnownedPattern = regexp.MustCompile(
		vehiclePrefix + ` Owner: N/A\.` + vehicleLocation,
	)
)

var vehicleRules = []Rule{
	{Name: "owned", Pattern: vehicleOwnedPattern, Build: buildVehicle},
	{Name: "unowned", Pattern: vehicleUnownedPattern, Build: buildVehicle},
}

func buildVehicle(m *Match) (event.Event, bool) {
	ev := &event.VehicleLifecycle{
		Action:    m.Get("action"),
		Vehicle:   m.Get("vehicle"),
		VehicleID: m.Get("vid"),
		Location:  m.Vector("x", "y", "z"),
	}
	if id := m.Get("oid"); id != "" {
		ev.HasOwner = true
		ev.Owner = m.Player("name", "oid")
		ev.Header = header("%s %s (#%s) owned by %s", ev.Vehicle, ev.Action, ev.VehicleID, or(ev.Owner.Name, id))
	} else {
		ev.Header = header("%s %s (#%s)", ev.Vehicle, ev.Action, ev.VehicleID)
	}
	return ev, true
}

package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

const chestLocation = `(?: Location: X=(?P<x>\S+) Y=(?P<y>\S+) Z=(?P<z>\S+?))?\.?$`

var (
	// Matches: "Chest (entity id: 123456) ownership changed. Old owner: 76561198086065370 (3, Urrgence). New owner: 76561197987224276 (5, Slang). Location: X=1.0 Y=2.0 Z=3.0"
	chestTransferPattern = regexp.MustCompile(
		`^Chest \(entity id: (?P<chest>\d+)\) ownership changed\. Old owner: (?P<oid>\d+) \((?P<on>\d+), (?P<oname>.*?)\)\. New owner: (?P<nid>\d+) \((?P<nn>\d+), (?P<nname>.*?)\)\.` + chestLocation,
	)

	// Matches: "Chest (entity id: 123456) claimed by 76561197987224276 (5, Slang). Location: X=1.0 Y=2.0 Z=3.0"
	chestClaimPattern = regexp.MustCompile(
		`^Chest \(entity id: (?P<chest>\d+)\) claimed by (?P<nid>\d+) \((?P<nn>\d+), (?P<nname>.*?)\)\.` + chestLocation,
	)
)

var chestRules = []Rule{
	{Name: "transfer", Pattern: chestTransferPattern, Build: buildChest},
	{Name: "claim", Pattern: chestClaimPattern, Build: buildChest},
}

func buildChest(m *Match) (event.Event, bool) {
	ev := &event.ChestOwnershipChange{
		ChestID:  m.Get("chest"),
		NewOwner: m.Player("nname", "nid"),
		Location: m.Vector("x", "y", "z"),
	}
	if m.Get("oid") != "" {
		ev.HasOldOwner = true
		ev.OldOwner = m.Player("oname", "oid")
		ev.Header = header("Chest %s transferred from %s to %s", ev.ChestID, ev.OldOwner.Name, ev.NewOwner.Name)
	} else {
		ev.Header = header("Chest %s claimed by %s", ev.ChestID, ev.NewOwner.Name)
	}
	return ev, true
}

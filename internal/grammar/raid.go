package grammar

import (
	"regexp"
	"time"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

const raidPrefix = `^\[LogRaidProtection\] Raid protection for flag (?P<flag>\d+) \(owner (?P<id>\d+), (?P<name>.*?)\)`

var (
	// Matches: "[LogRaidProtection] Raid protection for flag 42 (owner 76561198086065370, Urrgence) activated. Ends at 2025.07.19-20.35.44"
	raidActivatedPattern = regexp.MustCompile(raidPrefix + ` activated(?:\. Ends at (?P<until>\S+?))?\.?$`)

	// Matches: "[LogRaidProtection] Raid protection for flag 42 (owner 76561198086065370, Urrgence) expired."
	raidEndedPattern = regexp.MustCompile(raidPrefix + ` (?P<state>ended|expired|cancelled|deactivated)\.?$`)
)

var raidRules = []Rule{
	{Name: "activated", Pattern: raidActivatedPattern, Build: buildRaid},
	{Name: "ended", Pattern: raidEndedPattern, Build: buildRaid},
}

func buildRaid(m *Match) (event.Event, bool) {
	ev := &event.RaidProtectionChange{
		FlagID: m.Get("flag"),
		Owner:  m.Player("name", "id"),
		State:  or(m.Get("state"), "activated"),
	}
	if until := m.Get("until"); until != "" {
		// An unparseable end time is dropped, not the event.
		ev.Until = parseTime(until, time.Time{})
	}
	ev.Header = header("Raid protection %s for flag %s (%s)", ev.State, ev.FlagID, ev.Owner.Name)
	return ev, true
}

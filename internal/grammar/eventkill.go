package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// Matches: "[EventKill] Slang(76561197987224276) killed Urrgence(76561198086065370) with Weapon_M1911_C at distance 12.5 m in event TeamDeathmatch"
var eventKillPattern = regexp.MustCompile(
	`^\[EventKill\] (?P<killer>.+?)\((?P<kid>\d+)\) killed (?P<victim>.+?)\((?P<vid>\d+)\) with (?P<weapon>\S+)(?: at distance (?P<dist>\S+) m)? in event (?P<event>.+)$`,
)

var eventKillRules = []Rule{
	{Name: "event_kill", Pattern: eventKillPattern, Build: buildEventKill},
}

func buildEventKill(m *Match) (event.Event, bool) {
	ev := &event.EventKill{
		Killer:    m.Player("killer", "kid"),
		Victim:    m.Player("victim", "vid"),
		Distance:  m.Number("dist"),
		EventName: m.Get("event"),
	}
	ev.WeaponID, ev.WeaponName = normalizeWeapon(m.Get("weapon"))
	ev.Header = header("[%s] %s killed %s with %s", ev.EventName, ev.Killer.Name, ev.Victim.Name, ev.WeaponName)
	return ev, true
}

package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

var (
	// Matches: "AConZGameMode::KickPlayer: User id: '76561198086065370', Reason: Ping too high"
	kickPattern = regexp.MustCompile(
		`^AConZGameMode::KickPlayer: User id: '(?P<id>\d+)'(?:, Reason: (?P<reason>.*))?$`,
	)

	// Matches: "AConZGameMode::BanPlayerById: User id: '76561198086065370', Reason: Cheating"
	banPattern = regexp.MustCompile(
		`^AConZGameMode::BanPlayer(?:ById)?: User id: '(?P<id>\d+)'(?:, Reason: (?P<reason>.*))?$`,
	)

	// Matches: "[AntiCheat] Player Urrgence(76561198086065370) violation: SpeedHack (value: 2.5)"
	antiCheatPattern = regexp.MustCompile(
		`^\[AntiCheat\] Player (?P<name>.+?)\((?P<id>\d+)\) violation: (?P<reason>.+?)(?: \(value: (?P<value>[^)]*)\))?$`,
	)

	// Matches: "Player Urrgence(76561198086065370) tried to interact with Chest_C out of range (distance: 450.5)"
	outOfRangePattern = regexp.MustCompile(
		`^Player (?P<name>.+?)\((?P<id>\d+)\) tried to interact with (?P<reason>.+?) out of range(?: \(distance: (?P<value>[^)]*)\))?$`,
	)

	// Matches: "[Lockpicking] Player Urrgence(76561198086065370) tampered with lock Door_Lock_C (attempts: 12)"
	lockpickPattern = regexp.MustCompile(
		`^\[Lockpicking\] Player (?P<name>.+?)\((?P<id>\d+)\) tampered with lock (?P<reason>.+?)(?: \(attempts: (?P<value>[^)]*)\))?$`,
	)
)

var violationRules = []Rule{
	{Name: "kick", Pattern: kickPattern, Build: buildViolation(event.ViolationKick, "kicked")},
	{Name: "ban", Pattern: banPattern, Build: buildViolation(event.ViolationBan, "banned")},
	{Name: "anticheat", Pattern: antiCheatPattern, Build: buildViolation(event.ViolationAntiCheat, "flagged by anti-cheat")},
	{Name: "out_of_range", Pattern: outOfRangePattern, Build: buildViolation(event.ViolationOutOfRange, "interacted out of range")},
	{Name: "lockpick", Pattern: lockpickPattern, Build: buildViolation(event.ViolationLockpicking, "tampered with a lock")},
}

func buildViolation(kind event.ViolationKind, verb string) func(*Match) (event.Event, bool) {
	return func(m *Match) (event.Event, bool) {
		ev := &event.Violation{
			Type:   kind,
			Player: m.Player("name", "id"),
			Reason: m.Get("reason"),
			Value:  m.Number("value"),
		}
		who := or(ev.Player.Name, ev.Player.SteamID)
		if ev.Reason != "" {
			ev.Header = header("%s %s: %s", who, verb, ev.Reason)
		} else {
			ev.Header = header("%s %s", who, verb)
		}
		return ev, true
	}
}

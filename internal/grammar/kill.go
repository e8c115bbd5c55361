package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

const (
	// "Died: Urrgence (76561198086065370), Killer: Slang (76561197987224276)"
	diedPrefix = `^Died: (?P<victim>.+?) \((?P<vid>\d+)\), Killer: (?P<killer>.+?) \((?P<kid>\d+)\)`

	// Matches: "S[KillerLoc : -47875.42, -319777.94, 16448.08 VictimLoc: -46187.92, -320285.81, 16447.89, Distance: 17.62 m]"
	killLocation = `S\[KillerLoc\s*:\s*(?P<kx>[^,\s]+),\s*(?P<ky>[^,\s]+),\s*(?P<kz>[^,\s]+)\s+VictimLoc\s*:\s*(?P<vx>[^,\s]+),\s*(?P<vy>[^,\s]+),\s*(?P<vz>[^,\s]+),\s*Distance\s*:\s*(?P<dist>[^\s\]]+)\s*m\]`
)

var (
	// Killer and victim are the same player.
	// Captures: victim, vid, killer, kid, weapon (optional), wtype (optional)
	suicidePattern = regexp.MustCompile(
		diedPrefix + `(?: Weapon: (?P<weapon>\S+)(?: \[(?P<wtype>[^\]]*)\])?)?(?:.*?` + killLocation + `)?`,
	)

	// Matches: "... Weapon: Grenade_M67_C [Explosion] S[...]"
	// Matches: "... Weapon: BearTrap_C [Trap] S[...]"
	explosiveKillPattern = regexp.MustCompile(
		diedPrefix + ` Weapon: (?P<weapon>\S+) \[(?P<wtype>Explosion|Trap)\](?:.*?` + killLocation + `)?`,
	)

	// Matches: "... Weapon: Weapon_AS_Val_C [Projectile] S[...] C[...]"
	weaponKillPattern = regexp.MustCompile(
		diedPrefix + ` Weapon: (?P<weapon>\S+)(?: \[(?P<wtype>[^\]]*)\])?(?:.*?` + killLocation + `)?`,
	)

	// No "Weapon:" part: fists or unknown cause.
	unarmedKillPattern = regexp.MustCompile(
		diedPrefix + `(?:.*?` + killLocation + `)?`,
	)

	// Matches: "Comitted suicide. User: Urrgence (76561198086065370), Location: X=1.0 Y=2.0 Z=3.0"
	// The misspelling is the server's.
	committedSuicidePattern = regexp.MustCompile(
		`^Comm?itted suicide\. User: (?P<name>.+?) \((?P<id>\d+)\)(?:, Location: X=(?P<x>\S+) Y=(?P<y>\S+) Z=(?P<z>\S+))?`,
	)
)

var killRules = []Rule{
	{Name: "suicide", Pattern: suicidePattern, Build: buildSuicide},
	{Name: "explosive_kill", Pattern: explosiveKillPattern, Build: buildKill},
	{Name: "weapon_kill", Pattern: weaponKillPattern, Build: buildKill},
	{Name: "unarmed_kill", Pattern: unarmedKillPattern, Build: buildKill},
	{Name: "committed_suicide", Pattern: committedSuicidePattern, Build: buildCommittedSuicide},
}

func buildSuicide(m *Match) (event.Event, bool) {
	if m.Get("vid") != m.Get("kid") {
		return nil, false
	}
	ev := &event.Suicide{
		Player:   m.Player("victim", "vid"),
		Location: m.Vector("vx", "vy", "vz"),
	}
	if w := m.Get("weapon"); w != "" {
		ev.WeaponID, ev.WeaponName = normalizeWeapon(w)
	}
	ev.Header = header("%s committed suicide", ev.Player.Name)
	return ev, true
}

func buildCommittedSuicide(m *Match) (event.Event, bool) {
	ev := &event.Suicide{
		Player:   m.Player("name", "id"),
		Location: m.Vector("x", "y", "z"),
	}
	ev.Header = header("%s committed suicide", ev.Player.Name)
	return ev, true
}

func buildKill(m *Match) (event.Event, bool) {
	ev := &event.Kill{
		Victim:     m.Player("victim", "vid"),
		Killer:     m.Player("killer", "kid"),
		WeaponType: m.Get("wtype"),
		Method:     event.KillUnarmed,
	}
	if w := m.Get("weapon"); w != "" {
		ev.WeaponID, ev.WeaponName = normalizeWeapon(w)
		switch ev.WeaponType {
		case "Explosion":
			ev.Method = event.KillExplosive
		case "Trap":
			ev.Method = event.KillTrap
		default:
			ev.Method = event.KillWeapon
		}
	}
	if m.Get("dist") != "" {
		ev.HasLocations = true
		ev.KillerLoc = m.Vector("kx", "ky", "kz")
		ev.VictimLoc = m.Vector("vx", "vy", "vz")
		ev.Distance = m.Number("dist")
	}

	switch {
	case ev.WeaponName == "":
		ev.Header = header("%s killed %s", ev.Killer.Name, ev.Victim.Name)
	case ev.HasLocations:
		ev.Header = header("%s killed %s with %s (%s m)", ev.Killer.Name, ev.Victim.Name, ev.WeaponName, ev.Distance)
	default:
		ev.Header = header("%s killed %s with %s", ev.Killer.Name, ev.Victim.Name, ev.WeaponName)
	}
	return ev, true
}

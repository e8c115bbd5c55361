package grammar

import (
	"regexp"
	"strings"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

const adminPrefix = `^'(?P<id>\d+):(?P<name>.*?)\((?P<n>\d+)\)'`

var (
	// Matches: "'76561198086065370:Urrgence(12)' Command: 'SpawnItem Weapon_AK47 1'"
	adminCommandPattern = regexp.MustCompile(adminPrefix + ` Command: '(?P<command>.*)'\s*$`)

	// Matches: "'76561198086065370:Urrgence(12)' Custom: 'Announce Restart in 5 minutes'"
	adminCustomPattern = regexp.MustCompile(adminPrefix + ` Custom: '(?P<command>.*)'\s*$`)
)

var adminRules = []Rule{
	{Name: "command", Pattern: adminCommandPattern, Build: buildAdminCommand(false)},
	{Name: "custom", Pattern: adminCustomPattern, Build: buildAdminCommand(true)},
}

func buildAdminCommand(custom bool) func(*Match) (event.Event, bool) {
	return func(m *Match) (event.Event, bool) {
		full := m.Get("command")
		if full == "" {
			return nil, false
		}
		cmd, args, _ := strings.Cut(full, " ")
		ev := &event.AdminCommand{
			Admin:   m.Player("name", "id"),
			Command: cmd,
			Args:    strings.TrimSpace(args),
			Custom:  custom,
		}
		ev.Header = header("%s ran %s", or(ev.Admin.Name, ev.Admin.SteamID), full)
		return ev, true
	}
}

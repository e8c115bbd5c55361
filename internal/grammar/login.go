package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

const loginPrefix = `^'(?:(?P<ip>[0-9A-Fa-f.:]+) )?(?P<id>\d+):(?P<name>.*?)\((?P<n>\d+)\)'`

const loginLocation = ` at: X=(?P<x>\S+) Y=(?P<y>\S+) Z=(?P<z>\S+?)(?P<drone> \(as drone\))?$`

var (
	// Matches: "'10.0.0.1 76561198086065370:Urrgence(12)' logged in at: X=-1.0 Y=2.0 Z=3.0"
	// Matches: "... logged in at: X=-1.0 Y=2.0 Z=3.0 (as drone)"
	loginPattern = regexp.MustCompile(loginPrefix + ` logged in` + loginLocation)

	// Matches: "'10.0.0.1 76561198086065370:Urrgence(12)' logged out at: X=-1.0 Y=2.0 Z=3.0"
	logoutPattern = regexp.MustCompile(loginPrefix + ` logged out` + loginLocation)
)

var loginRules = []Rule{
	{Name: "login", Pattern: loginPattern, Build: buildLogin(true)},
	{Name: "logout", Pattern: logoutPattern, Build: buildLogin(false)},
}

func buildLogin(in bool) func(*Match) (event.Event, bool) {
	return func(m *Match) (event.Event, bool) {
		ev := &event.LoginLogout{
			Player:   m.Player("name", "id"),
			IP:       m.Get("ip"),
			LoggedIn: in,
			Drone:    m.Get("drone") != "",
			Location: m.Vector("x", "y", "z"),
		}
		verb := "logged out"
		if in {
			verb = "logged in"
		}
		if ev.Drone {
			verb += " as drone"
		}
		ev.Header = header("%s %s", ev.Player.Name, verb)
		return ev, true
	}
}

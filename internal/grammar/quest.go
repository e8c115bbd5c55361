package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// Matches: "[LogQuest] Player Urrgence(76561198086065370) completed quest T1_Armory_Fetch (trader A_0_Armory)"
// Captures: name, id, outcome, quest, trader (optional)
var questPattern = regexp.MustCompile(
	`^\[LogQuest\] Player (?P<name>.+?)\((?P<id>\d+)\) (?P<outcome>accepted|completed|failed|abandoned) quest (?P<quest>\S+)(?: \(trader (?P<trader>[^)]+)\))?$`,
)

var questRules = []Rule{
	{Name: "outcome", Pattern: questPattern, Build: buildQuest},
}

func buildQuest(m *Match) (event.Event, bool) {
	ev := &event.QuestOutcome{
		Player:  m.Player("name", "id"),
		Quest:   m.Get("quest"),
		Trader:  m.Get("trader"),
		Outcome: m.Get("outcome"),
	}
	ev.Header = header("%s %s quest %s", ev.Player.Name, ev.Outcome, ev.Quest)
	return ev, true
}

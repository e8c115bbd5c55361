package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

var (
	// Periodic award, written without a timestamp.
	// Matches: "Player Zeltaon(76561198212603353) was awarded 1611.960938 fame points in 10 minutes for a total of 1611.960938"
	famePeriodicPattern = regexp.MustCompile(
		`^Player (?P<name>.+?)\((?P<id>\d+)\) was awarded (?P<amount>\S+) fame points in (?P<minutes>\S+) minutes for a total of (?P<total>\S+)$`,
	)

	// Breakdown line following a periodic award.
	// Matches: "Player Zeltaon(76561198212603353) fame points breakdown: KillingZombie = 12.500000"
	fameDetailPattern = regexp.MustCompile(
		`^Player (?P<name>.+?)\((?P<id>\d+)\) fame points breakdown: (?P<reason>.+?)\s*=\s*(?P<amount>\S+)$`,
	)

	// Matches: "Player Zeltaon(76561198212603353) was awarded 50.000000 fame points for MissionCompleted"
	// Matches: "... fame points for MissionCompleted for a total of 1661.960938"
	fameAwardPattern = regexp.MustCompile(
		`^Player (?P<name>.+?)\((?P<id>\d+)\) was awarded (?P<amount>\S+) fame points for (?P<reason>.+?)(?: for a total of (?P<total>\S+))?$`,
	)
)

var fameRules = []Rule{
	{Name: "periodic_award", Pattern: famePeriodicPattern, Build: buildPeriodicAward},
	{Name: "award_detail", Pattern: fameDetailPattern, Build: buildFameDetail},
	{Name: "award", Pattern: fameAwardPattern, Build: buildFameAward},
}

func buildPeriodicAward(m *Match) (event.Event, bool) {
	ev := &event.FamePointsAward{
		Player:   m.Player("name", "id"),
		Amount:   m.Number("amount"),
		Minutes:  m.Number("minutes"),
		Total:    m.Number("total"),
		Periodic: true,
	}
	ev.Header = header("%s earned %s fame points in %s minutes (total %s)", ev.Player.Name, ev.Amount, ev.Minutes, ev.Total)
	return ev, true
}

func buildFameDetail(m *Match) (event.Event, bool) {
	ev := &event.FameDetail{
		Player: m.Player("name", "id"),
		Reason: m.Get("reason"),
		Amount: m.Number("amount"),
	}
	ev.Header = header("%s: %s %s", ev.Player.Name, ev.Reason, ev.Amount)
	return ev, true
}

func buildFameAward(m *Match) (event.Event, bool) {
	ev := &event.FamePointsAward{
		Player: m.Player("name", "id"),
		Amount: m.Number("amount"),
		Reason: m.Get("reason"),
		Total:  m.Number("total"),
	}
	ev.Header = header("%s was awarded %s fame points for %s", ev.Player.Name, ev.Amount, ev.Reason)
	return ev, true
}

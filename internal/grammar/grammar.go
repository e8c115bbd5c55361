// Package grammar turns SCUM log lines into typed events.
//
// Each category has an ordered list of rules. A rule is data: a regular
// expression with named groups and a builder that assembles the event from
// the match. The first rule whose pattern matches and whose builder accepts
// the match wins; lines matching no rule produce nothing.
package grammar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/scumlog/scumlog-go/internal/reader"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// Timestamp format of SCUM server logs: "2025.07.19-18.35.44".
const timestampLayout = "2006.01.02-15.04.05"

// Matches the optional "2025.07.19-18.35.44: " prefix.
// Captures: (1) timestamp
var timestampPattern = regexp.MustCompile(`^(\d{4}\.\d{2}\.\d{2}-\d{2}\.\d{2}\.\d{2}):\s*`)

// Rule is one line shape of a category.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	// Build assembles the event. Returning false rejects the match and lets
	// later rules try the line.
	Build func(m *Match) (event.Event, bool)
}

// Grammar is the ordered rule list of one category.
type Grammar struct {
	Category event.Category
	Rules    []Rule
}

// Parse applies the rules to line. Events are stamped with the line's
// timestamp, or with now when the line has none or it does not parse.
func (g *Grammar) Parse(line reader.Line, now time.Time) (event.Event, bool) {
	text := strings.TrimRight(line.Text, "\r")
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	ts, body := splitTimestamp(text, now)
	for i := range g.Rules {
		rule := &g.Rules[i]
		sub := rule.Pattern.FindStringSubmatch(body)
		if sub == nil {
			continue
		}
		m := &Match{rule: rule, sub: sub, Time: ts, Now: now}
		ev, ok := rule.Build(m)
		if !ok || ev == nil {
			continue
		}
		h := ev.Head()
		if h.Time.IsZero() {
			h.Time = ts
		}
		h.Category = g.Category
		h.Raw = line.Text
		h.Line = line.Number
		return ev, true
	}
	return nil, false
}

// RuleNames lists the rule names in order.
func (g *Grammar) RuleNames() []string {
	names := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		names[i] = r.Name
	}
	return names
}

// builtin maps each category to its rule list.
var builtin = map[event.Category][]Rule{
	event.CategoryKill:           killRules,
	event.CategoryAdmin:          adminRules,
	event.CategoryVehicle:        vehicleRules,
	event.CategoryEconomy:        economyRules,
	event.CategoryViolation:      violationRules,
	event.CategoryFame:           fameRules,
	event.CategoryChest:          chestRules,
	event.CategoryLogin:          loginRules,
	event.CategoryQuest:          questRules,
	event.CategoryRaidProtection: raidRules,
	event.CategoryEventKill:      eventKillRules,
}

// For returns the built-in grammar of a category.
func For(c event.Category) (*Grammar, error) {
	rules, ok := builtin[c]
	if !ok {
		return nil, fmt.Errorf("no grammar for category %q", c)
	}
	return &Grammar{Category: c, Rules: rules}, nil
}

func splitTimestamp(text string, now time.Time) (time.Time, string) {
	loc := timestampPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return now, strings.TrimSpace(text)
	}
	body := strings.TrimSpace(text[loc[1]:])
	return parseTime(text[loc[2]:loc[3]], now), body
}

// parseTime parses a log timestamp as UTC, falling back to fallback.
func parseTime(s string, fallback time.Time) time.Time {
	t, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return fallback
	}
	return t
}

// Match gives builders typed access to a rule's named groups.
type Match struct {
	rule *Rule
	sub  []string
	// Time is the line timestamp (or processing time).
	Time time.Time
	// Now is the processing time.
	Now time.Time
}

// Get returns the named group, trimmed, or "" if absent.
func (m *Match) Get(name string) string {
	i := m.rule.Pattern.SubexpIndex(name)
	if i < 0 || i >= len(m.sub) {
		return ""
	}
	return strings.TrimSpace(m.sub[i])
}

// Number converts the named group.
func (m *Match) Number(name string) event.Number {
	return event.ParseNumber(m.Get(name))
}

// Vector converts the x, y and z groups.
func (m *Match) Vector(x, y, z string) event.Vector {
	return event.ParseVector(m.Get(x), m.Get(y), m.Get(z))
}

// Player builds a player from the name and id groups.
func (m *Match) Player(name, id string) event.Player {
	return event.Player{Name: m.Get(name), SteamID: m.Get(id)}
}

// header starts an event header with a summary; the engine fills the rest.
func header(format string, args ...any) event.Header {
	return event.Header{Summary: fmt.Sprintf(format, args...)}
}

// Weapon blueprint names look like "Weapon_AS_Val_C" or "BP_Weapon_M82A1_C".
var weaponAffixes = []string{"BP_", "Weapon_"}

// normalizeWeapon returns the weapon id ("AS_Val") and display name
// ("AS Val") of a blueprint name.
func normalizeWeapon(raw string) (id, name string) {
	id = strings.TrimSpace(raw)
	for _, prefix := range weaponAffixes {
		id = strings.TrimPrefix(id, prefix)
	}
	id = strings.TrimSuffix(id, "_C")
	name = strings.Join(strings.FieldsFunc(id, func(r rune) bool { return r == '_' }), " ")
	return id, name
}

// or returns s, or def if s is empty.
func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

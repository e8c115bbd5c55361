package notify

import (
	"fmt"
	"strings"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// Formatter renders one event. Returning false skips the event.
type Formatter func(event.Event) (Message, bool)

// Formatters maps a category to its formatter.
type Formatters map[event.Category]Formatter

// Embed colors.
const (
	colorRed    = 0xE74C3C
	colorOrange = 0xE67E22
	colorYellow = 0xF1C40F
	colorGreen  = 0x2ECC71
	colorBlue   = 0x3498DB
	colorPurple = 0x9B59B6
	colorGrey   = 0x95A5A6
)

// DefaultFormatters returns a registry covering every category.
func DefaultFormatters() Formatters {
	return Formatters{
		event.CategoryKill:           formatKill,
		event.CategoryAdmin:          formatAdmin,
		event.CategoryVehicle:        formatVehicle,
		event.CategoryEconomy:        formatEconomy,
		event.CategoryViolation:      formatViolation,
		event.CategoryFame:           formatFame,
		event.CategoryChest:          formatChest,
		event.CategoryLogin:          formatLogin,
		event.CategoryQuest:          formatQuest,
		event.CategoryRaidProtection: formatRaid,
		event.CategoryEventKill:      formatEventKill,
	}
}

func base(ev event.Event, title string, color int) Message {
	h := ev.Head()
	return Message{
		Title:       title,
		Description: h.Summary,
		Color:       color,
		Timestamp:   h.Time,
	}
}

// add appends a field unless value is empty.
func (m *Message) add(name, value string, inline bool) {
	if value == "" {
		return
	}
	m.Fields = append(m.Fields, Field{Name: name, Value: value, Inline: inline})
}

func playerText(p event.Player) string {
	switch {
	case p.Name != "" && p.SteamID != "":
		return fmt.Sprintf("%s (%s)", p.Name, p.SteamID)
	case p.Name != "":
		return p.Name
	default:
		return p.SteamID
	}
}

func formatKill(ev event.Event) (Message, bool) {
	switch e := ev.(type) {
	case *event.Kill:
		m := base(ev, "Kill", colorRed)
		m.add("Killer", playerText(e.Killer), true)
		m.add("Victim", playerText(e.Victim), true)
		m.add("Weapon", e.WeaponName, true)
		m.add("Type", e.WeaponType, true)
		if e.HasLocations {
			m.add("Distance", e.Distance.String()+" m", true)
			m.add("Killer location", e.KillerLoc.String(), false)
			m.add("Victim location", e.VictimLoc.String(), false)
		}
		return m, true
	case *event.Suicide:
		m := base(ev, "Suicide", colorGrey)
		m.add("Player", playerText(e.Player), true)
		m.add("Weapon", e.WeaponName, true)
		m.add("Location", e.Location.String(), false)
		return m, true
	}
	return Message{}, false
}

func formatAdmin(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.AdminCommand)
	if !ok {
		return Message{}, false
	}
	title := "Admin command"
	if e.Custom {
		title = "Admin custom command"
	}
	m := base(ev, title, colorPurple)
	m.add("Admin", playerText(e.Admin), true)
	m.add("Command", e.Command, true)
	m.add("Arguments", e.Args, false)
	return m, true
}

func formatVehicle(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.VehicleLifecycle)
	if !ok {
		return Message{}, false
	}
	m := base(ev, "Vehicle "+strings.ToLower(e.Action), colorBlue)
	m.add("Vehicle", e.Vehicle, true)
	m.add("ID", e.VehicleID, true)
	if e.HasOwner {
		m.add("Owner", playerText(e.Owner), true)
	}
	m.add("Location", e.Location.String(), false)
	return m, true
}

var transactionTitles = map[event.TransactionKind]string{
	event.TradeSale:          "Trade sale",
	event.TradePurchase:      "Trade purchase",
	event.BankDeposit:        "Bank deposit",
	event.BankWithdrawal:     "Bank withdrawal",
	event.BankCardPurchase:   "Bank card purchase",
	event.CurrencyConversion: "Currency conversion",
}

func formatEconomy(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.EconomyTransaction)
	if !ok {
		return Message{}, false
	}
	m := base(ev, transactionTitles[e.Type], colorGreen)
	m.add("Player", playerText(e.Player), true)
	m.add("Amount", e.Amount.String(), true)
	m.add("Item", e.Item, true)
	m.add("Trader", e.Trader, true)
	m.add("Account", e.Account, true)
	if b := e.Balance; b != nil {
		m.add("Cash", fmt.Sprintf("%s → %s", b.CashBefore, b.CashAfter), true)
		m.add("Account balance", fmt.Sprintf("%s → %s", b.AccountBefore, b.AccountAfter), true)
		m.add("Gold", fmt.Sprintf("%s → %s", b.GoldBefore, b.GoldAfter), true)
		m.add("Trader funds", fmt.Sprintf("%s → %s", b.TraderBefore, b.TraderAfter), true)
	}
	return m, true
}

func formatViolation(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.Violation)
	if !ok {
		return Message{}, false
	}
	color := colorOrange
	if e.Type == event.ViolationBan || e.Type == event.ViolationAntiCheat {
		color = colorRed
	}
	m := base(ev, "Violation: "+string(e.Type), color)
	m.add("Player", playerText(e.Player), true)
	m.add("Reason", e.Reason, true)
	m.add("Value", e.Value.String(), true)
	return m, true
}

func formatFame(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.FamePointsAward)
	if !ok {
		return Message{}, false
	}
	m := base(ev, "Fame points", colorYellow)
	m.add("Player", playerText(e.Player), true)
	m.add("Amount", e.Amount.String(), true)
	m.add("Total", e.Total.String(), true)
	if len(e.Details) > 0 {
		var b strings.Builder
		for _, d := range e.Details {
			fmt.Fprintf(&b, "%s: %s\n", d.Reason, d.Amount)
		}
		m.add("Breakdown", strings.TrimSuffix(b.String(), "\n"), false)
	}
	return m, true
}

func formatChest(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.ChestOwnershipChange)
	if !ok {
		return Message{}, false
	}
	m := base(ev, "Chest ownership", colorBlue)
	m.add("Chest", e.ChestID, true)
	if e.HasOldOwner {
		m.add("Old owner", playerText(e.OldOwner), true)
	}
	m.add("New owner", playerText(e.NewOwner), true)
	m.add("Location", e.Location.String(), false)
	return m, true
}

func formatLogin(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.LoginLogout)
	if !ok {
		return Message{}, false
	}
	title, color := "Logout", colorGrey
	if e.LoggedIn {
		title, color = "Login", colorGreen
	}
	m := base(ev, title, color)
	m.add("Player", playerText(e.Player), true)
	if e.Drone {
		m.add("Mode", "drone", true)
	}
	m.add("Location", e.Location.String(), false)
	return m, true
}

func formatQuest(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.QuestOutcome)
	if !ok {
		return Message{}, false
	}
	m := base(ev, "Quest "+e.Outcome, colorYellow)
	m.add("Player", playerText(e.Player), true)
	m.add("Quest", e.Quest, true)
	m.add("Trader", e.Trader, true)
	return m, true
}

func formatRaid(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.RaidProtectionChange)
	if !ok {
		return Message{}, false
	}
	m := base(ev, "Raid protection "+e.State, colorPurple)
	m.add("Flag", e.FlagID, true)
	m.add("Owner", playerText(e.Owner), true)
	if !e.Until.IsZero() {
		m.add("Until", e.Until.UTC().Format("2006-01-02 15:04:05 UTC"), true)
	}
	return m, true
}

func formatEventKill(ev event.Event) (Message, bool) {
	e, ok := ev.(*event.EventKill)
	if !ok {
		return Message{}, false
	}
	m := base(ev, "Event kill", colorOrange)
	m.add("Event", e.EventName, true)
	m.add("Killer", playerText(e.Killer), true)
	m.add("Victim", playerText(e.Victim), true)
	m.add("Weapon", e.WeaponName, true)
	if !e.Distance.IsZero() {
		m.add("Distance", e.Distance.String()+" m", true)
	}
	return m, true
}

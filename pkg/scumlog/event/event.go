// Package event defines the typed events produced from SCUM server logs.
//
// Event is a closed union: only the variants declared in this package
// implement it, so consumers can switch exhaustively on the concrete type.
package event

import "time"

// Category identifies a server log category.
type Category string

// Log categories written by the SCUM dedicated server.
const (
	CategoryKill           Category = "kill"
	CategoryAdmin          Category = "admin"
	CategoryVehicle        Category = "vehicle"
	CategoryEconomy        Category = "economy"
	CategoryViolation      Category = "violations"
	CategoryFame           Category = "famepoints"
	CategoryChest          Category = "chest"
	CategoryLogin          Category = "login"
	CategoryQuest          Category = "quests"
	CategoryRaidProtection Category = "raid_protection"
	CategoryEventKill      Category = "event_kill"
)

// Categories returns all known categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryKill,
		CategoryAdmin,
		CategoryVehicle,
		CategoryEconomy,
		CategoryViolation,
		CategoryFame,
		CategoryChest,
		CategoryLogin,
		CategoryQuest,
		CategoryRaidProtection,
		CategoryEventKill,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Header is shared by every event variant.
type Header struct {
	Time     time.Time `json:"time"`
	Category Category  `json:"category"`
	Summary  string    `json:"summary"`
	Raw      string    `json:"raw,omitempty"`
	Line     int       `json:"line,omitempty"` // 1-based ordinal in the source file
}

// Event is implemented by all event variants.
type Event interface {
	Head() *Header
	// Kind returns a short, stable variant name (e.g. "kill").
	Kind() string
	sealed()
}

func (h *Header) Head() *Header { return h }
func (*Header) sealed()          {}

// Player identifies a player by Steam ID and display name.
type Player struct {
	SteamID string `json:"steam_id"`
	Name    string `json:"name"`
}

// Kill is a player killed by another player.
type Kill struct {
	Header
	Victim       Player   `json:"victim"`
	Killer       Player   `json:"killer"`
	WeaponID     string   `json:"weapon_id,omitempty"`
	WeaponName   string   `json:"weapon_name,omitempty"`
	WeaponType   string   `json:"weapon_type,omitempty"`
	Method       KillKind `json:"method"`
	KillerLoc    Vector   `json:"killer_loc"`
	VictimLoc    Vector   `json:"victim_loc"`
	Distance     Number   `json:"distance"`
	HasLocations bool     `json:"has_locations"`
}

// KillKind distinguishes the kill log line shapes.
type KillKind string

const (
	KillWeapon    KillKind = "weapon"
	KillUnarmed   KillKind = "unarmed"
	KillExplosive KillKind = "explosive"
	KillTrap      KillKind = "trap"
)

// Suicide is a death where the killer is the victim.
type Suicide struct {
	Header
	Player     Player `json:"player"`
	WeaponID   string `json:"weapon_id,omitempty"`
	WeaponName string `json:"weapon_name,omitempty"`
	Location   Vector `json:"location"`
}

// AdminCommand is a command executed by a server admin.
type AdminCommand struct {
	Header
	Admin   Player `json:"admin"`
	Command string `json:"command"`
	Args    string `json:"args,omitempty"`
	Custom  bool   `json:"custom,omitempty"`
}

// VehicleLifecycle is a vehicle state change (destroyed, disappeared, ...).
type VehicleLifecycle struct {
	Header
	Action    string `json:"action"`
	Vehicle   string `json:"vehicle"`
	VehicleID string `json:"vehicle_id"`
	Owner     Player `json:"owner"`
	HasOwner  bool   `json:"has_owner"`
	Location  Vector `json:"location"`
}

// TransactionKind enumerates economy transactions.
type TransactionKind string

const (
	TradeSale          TransactionKind = "trade_sale"
	TradePurchase      TransactionKind = "trade_purchase"
	BankDeposit        TransactionKind = "bank_deposit"
	BankWithdrawal     TransactionKind = "bank_withdrawal"
	BankCardPurchase   TransactionKind = "bank_card_purchase"
	CurrencyConversion TransactionKind = "currency_conversion"
)

// EconomyTransaction is a trade or bank operation.
type EconomyTransaction struct {
	Header
	Type     TransactionKind `json:"type"`
	Player   Player          `json:"player"`
	Item     string          `json:"item,omitempty"`
	Quantity Number          `json:"quantity"`
	Amount   Number          `json:"amount"`
	Trader   string          `json:"trader,omitempty"`
	Account  string          `json:"account,omitempty"`
	// Converted holds the target side of a currency conversion.
	Converted Number         `json:"converted"`
	Currency  string         `json:"currency,omitempty"`
	Balance   *BalanceChange `json:"balance,omitempty"`
}

// BalanceChange is attached to a transaction by before/after correlation.
type BalanceChange struct {
	CashBefore    Number `json:"cash_before"`
	CashAfter     Number `json:"cash_after"`
	AccountBefore Number `json:"account_before"`
	AccountAfter  Number `json:"account_after"`
	GoldBefore    Number `json:"gold_before"`
	GoldAfter     Number `json:"gold_after"`
	TraderBefore  Number `json:"trader_before"`
	TraderAfter   Number `json:"trader_after"`
}

// Phase marks a balance snapshot as taken before or after a transaction.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// BalanceSnapshot is an economy marker line. It is consumed by correlation
// and never delivered on its own.
type BalanceSnapshot struct {
	Header
	Phase   Phase  `json:"phase"`
	Player  Player `json:"player"`
	Trader  string `json:"trader"`
	Cash    Number `json:"cash"`
	Account Number `json:"account"`
	Gold    Number `json:"gold"`
	Funds   Number `json:"funds"`
}

// ViolationKind enumerates violation log shapes.
type ViolationKind string

const (
	ViolationKick        ViolationKind = "kick"
	ViolationBan         ViolationKind = "ban"
	ViolationAntiCheat   ViolationKind = "anticheat"
	ViolationOutOfRange  ViolationKind = "out_of_range"
	ViolationLockpicking ViolationKind = "lockpick"
)

// Violation is a rule or anti-cheat violation.
type Violation struct {
	Header
	Type   ViolationKind `json:"type"`
	Player Player        `json:"player"`
	Reason string        `json:"reason,omitempty"`
	Value  Number        `json:"value"`
}

// FamePointsAward is a fame point award. Periodic awards may carry the
// breakdown lines that followed them.
type FamePointsAward struct {
	Header
	Player   Player       `json:"player"`
	Amount   Number       `json:"amount"`
	Total    Number       `json:"total"`
	Minutes  Number       `json:"minutes"`
	Reason   string       `json:"reason,omitempty"`
	Periodic bool         `json:"periodic"`
	Details  []FameDetail `json:"details,omitempty"`
}

// FameDetail is one breakdown line of a periodic award.
type FameDetail struct {
	Header
	Player Player `json:"player"`
	Reason string `json:"reason"`
	Amount Number `json:"amount"`
}

// ChestOwnershipChange is a chest claim or transfer.
type ChestOwnershipChange struct {
	Header
	ChestID     string `json:"chest_id"`
	OldOwner    Player `json:"old_owner"`
	HasOldOwner bool   `json:"has_old_owner"`
	NewOwner    Player `json:"new_owner"`
	Location    Vector `json:"location"`
}

// LoginLogout is a player session boundary.
type LoginLogout struct {
	Header
	Player   Player `json:"player"`
	IP       string `json:"ip,omitempty"`
	LoggedIn bool   `json:"logged_in"`
	Drone    bool   `json:"drone,omitempty"`
	Location Vector `json:"location"`
}

// QuestOutcome is a quest state transition.
type QuestOutcome struct {
	Header
	Player  Player `json:"player"`
	Quest   string `json:"quest"`
	Trader  string `json:"trader,omitempty"`
	Outcome string `json:"outcome"`
}

// RaidProtectionChange is a raid protection state change for a flag.
type RaidProtectionChange struct {
	Header
	FlagID string    `json:"flag_id"`
	Owner  Player    `json:"owner"`
	State  string    `json:"state"`
	Until  time.Time `json:"until,omitempty"`
}

// EventKill is a kill inside a server-run event (team deathmatch, ...).
type EventKill struct {
	Header
	Killer     Player `json:"killer"`
	Victim     Player `json:"victim"`
	WeaponID   string `json:"weapon_id,omitempty"`
	WeaponName string `json:"weapon_name,omitempty"`
	Distance   Number `json:"distance"`
	EventName  string `json:"event_name"`
}

func (*Kill) Kind() string                 { return "kill" }
func (*Suicide) Kind() string              { return "suicide" }
func (*AdminCommand) Kind() string         { return "admin_command" }
func (*VehicleLifecycle) Kind() string     { return "vehicle" }
func (*EconomyTransaction) Kind() string   { return "economy" }
func (*BalanceSnapshot) Kind() string      { return "balance_snapshot" }
func (*Violation) Kind() string            { return "violation" }
func (*FamePointsAward) Kind() string      { return "fame_points" }
func (*FameDetail) Kind() string           { return "fame_detail" }
func (*ChestOwnershipChange) Kind() string { return "chest" }
func (*LoginLogout) Kind() string          { return "login" }
func (*QuestOutcome) Kind() string         { return "quest" }
func (*RaidProtectionChange) Kind() string { return "raid_protection" }
func (*EventKill) Kind() string            { return "event_kill" }

// Marker reports whether ev is a correlation-only marker that must not be
// delivered to a sink.
func Marker(ev Event) bool {
	switch ev.(type) {
	case *BalanceSnapshot, *FameDetail:
		return true
	}
	return false
}

// Key returns the correlation key of ev (the Steam ID of the acting player),
// or "" if the variant has none.
func Key(ev Event) string {
	switch e := ev.(type) {
	case *EconomyTransaction:
		return e.Player.SteamID
	case *BalanceSnapshot:
		return e.Player.SteamID
	case *FamePointsAward:
		return e.Player.SteamID
	case *FameDetail:
		return e.Player.SteamID
	}
	return ""
}

package grammar

import (
	"regexp"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// Financial state markers bracket every trade. They are paired by the
// economy correlator and never delivered themselves.
var (
	// Matches: "[Trade] Before selling tradeables to trader A_0_Armory, player Urrgence(7656...) had 100 cash, 200 account balance and 1 gold and trader had 10000 funds."
	// Matches: "[Trade] Before purchasing tradeables from trader ..."
	tradeBeforePattern = regexp.MustCompile(
		`^\[Trade\] Before (?:selling tradeables to|purchasing tradeables from) trader (?P<trader>[^,]+), player (?P<name>.+?)\((?P<id>\d+)\) had (?P<cash>\S+) cash, (?P<account>\S+) account balance and (?P<gold>\S+) gold and trader had (?P<funds>\S+) funds\.?$`,
	)

	// Matches: "[Trade] After tradeable sale to trader A_0_Armory, player Urrgence(7656...) has 1300 cash, 200 account balance and 1 gold and trader has 8800 funds."
	tradeAfterPattern = regexp.MustCompile(
		`^\[Trade\] After tradeable (?:sale to|purchase from) trader (?P<trader>[^,]+), player (?P<name>.+?)\((?P<id>\d+)\) has (?P<cash>\S+) cash, (?P<account>\S+) account balance and (?P<gold>\S+) gold and trader has (?P<funds>\S+) funds\.?$`,
	)

	// Matches: "[Trade] Tradeable (Weapon_AK47 (x1)) sold by Urrgence(7656...) for 1200 (1200 + 0 worth of contained items) to trader A_0_Armory, old amount in store was 5, new amount is 6, and effective users online: 3"
	tradeSalePattern = regexp.MustCompile(
		`^\[Trade\] Tradeable \((?P<item>.+?) \(x(?P<qty>[^)]+)\)\) sold by (?P<name>.+?)\((?P<id>\d+)\) for (?P<amount>[^\s(]+).*? to trader (?P<trader>[^,\s]+)`,
	)

	// Matches: "[Trade] Tradeable (Weapon_AK47 (x1)) purchased by Urrgence(7656...) for 1500 money from trader A_0_Armory, old amount in store is 6, new amount is 5, and effective users online: 3"
	tradePurchasePattern = regexp.MustCompile(
		`^\[Trade\] Tradeable \((?P<item>.+?) \(x(?P<qty>[^)]+)\)\) purchased by (?P<name>.+?)\((?P<id>\d+)\) for (?P<amount>[^\s(]+).*? from trader (?P<trader>[^,\s]+)`,
	)

	// Matches: "[Bank] Urrgence(ID:7656...)(Account Number:42) deposited 500(500 was added) to Account Number: 42"
	bankDepositPattern = regexp.MustCompile(
		`^\[Bank\] (?P<name>.+?)\(ID:(?P<id>\d+)\)\(Account Number:(?P<account>\d+)\) deposited (?P<amount>[^\s(]+)`,
	)

	// Matches: "[Bank] Urrgence(ID:7656...)(Account Number:42) withdrew 300(300 was removed) from Account Number: 42"
	bankWithdrawPattern = regexp.MustCompile(
		`^\[Bank\] (?P<name>.+?)\(ID:(?P<id>\d+)\)\(Account Number:(?P<account>\d+)\) withdrew (?P<amount>[^\s(]+)`,
	)

	// Matches: "[Bank] Urrgence(ID:7656...)(Account Number:42) purchased Gold card for 1000"
	bankCardPattern = regexp.MustCompile(
		`^\[Bank\] (?P<name>.+?)\(ID:(?P<id>\d+)\)\(Account Number:(?P<account>\d+)\) purchased (?P<item>.+?) card for (?P<amount>[^\s(]+)`,
	)

	// Matches: "[Currency Conversion] Urrgence(7656...) exchanged 1000 cash for 1 gold"
	currencyConversionPattern = regexp.MustCompile(
		`^\[Currency Conversion\] (?P<name>.+?)\((?P<id>\d+)\) exchanged (?P<amount>\S+) (?P<from>\w+) for (?P<converted>\S+) (?P<to>\w+)`,
	)
)

var economyRules = []Rule{
	{Name: "trade_before", Pattern: tradeBeforePattern, Build: buildSnapshot(event.PhaseBefore)},
	{Name: "trade_after", Pattern: tradeAfterPattern, Build: buildSnapshot(event.PhaseAfter)},
	{Name: "trade_sale", Pattern: tradeSalePattern, Build: buildTrade(event.TradeSale)},
	{Name: "trade_purchase", Pattern: tradePurchasePattern, Build: buildTrade(event.TradePurchase)},
	{Name: "bank_deposit", Pattern: bankDepositPattern, Build: buildBank(event.BankDeposit)},
	{Name: "bank_withdrawal", Pattern: bankWithdrawPattern, Build: buildBank(event.BankWithdrawal)},
	{Name: "bank_card_purchase", Pattern: bankCardPattern, Build: buildBank(event.BankCardPurchase)},
	{Name: "currency_conversion", Pattern: currencyConversionPattern, Build: buildConversion},
}

func buildSnapshot(phase event.Phase) func(*Match) (event.Event, bool) {
	return func(m *Match) (event.Event, bool) {
		ev := &event.BalanceSnapshot{
			Phase:   phase,
			Player:  m.Player("name", "id"),
			Trader:  m.Get("trader"),
			Cash:    m.Number("cash"),
			Account: m.Number("account"),
			Gold:    m.Number("gold"),
			Funds:   m.Number("funds"),
		}
		ev.Header = header("%s balance %s trade with %s", ev.Player.Name, phase, ev.Trader)
		return ev, true
	}
}

func buildTrade(kind event.TransactionKind) func(*Match) (event.Event, bool) {
	return func(m *Match) (event.Event, bool) {
		ev := &event.EconomyTransaction{
			Type:     kind,
			Player:   m.Player("name", "id"),
			Item:     m.Get("item"),
			Quantity: m.Number("qty"),
			Amount:   m.Number("amount"),
			Trader:   m.Get("trader"),
		}
		verb := "sold"
		prep := "to"
		if kind == event.TradePurchase {
			verb, prep = "bought", "from"
		}
		ev.Header = header("%s %s %s x%s for %s %s %s", ev.Player.Name, verb, ev.Item, ev.Quantity, ev.Amount, prep, ev.Trader)
		return ev, true
	}
}

func buildBank(kind event.TransactionKind) func(*Match) (event.Event, bool) {
	return func(m *Match) (event.Event, bool) {
		ev := &event.EconomyTransaction{
			Type:    kind,
			Player:  m.Player("name", "id"),
			Item:    m.Get("item"),
			Amount:  m.Number("amount"),
			Account: m.Get("account"),
		}
		switch kind {
		case event.BankDeposit:
			ev.Header = header("%s deposited %s to account %s", ev.Player.Name, ev.Amount, ev.Account)
		case event.BankWithdrawal:
			ev.Header = header("%s withdrew %s from account %s", ev.Player.Name, ev.Amount, ev.Account)
		default:
			ev.Header = header("%s purchased a %s card for %s", ev.Player.Name, ev.Item, ev.Amount)
		}
		return ev, true
	}
}

func buildConversion(m *Match) (event.Event, bool) {
	ev := &event.EconomyTransaction{
		Type:      event.CurrencyConversion,
		Player:    m.Player("name", "id"),
		Amount:    m.Number("amount"),
		Item:      m.Get("from"),
		Converted: m.Number("converted"),
		Currency:  m.Get("to"),
	}
	ev.Header = header("%s exchanged %s %s for %s %s", ev.Player.Name, ev.Amount, ev.Item, ev.Converted, ev.Currency)
	return ev, true
}

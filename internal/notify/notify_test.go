package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

var testChannel = Channel{ID: "123", Token: "secret"}

type recordingSink struct {
	mu   sync.Mutex
	msgs []Message
	err  error
	// ctxErrs records ctx.Err() as seen by the sink.
	ctxErrs []error
}

func (s *recordingSink) Send(ctx context.Context, ch Channel, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}

func testKill() *event.Kill {
	return &event.Kill{
		Header: event.Header{
			Time:     time.Date(2025, 7, 19, 18, 35, 44, 0, time.UTC),
			Category: event.CategoryKill,
			Summary:  "Slang killed Urrgence with AS Val (17.62 m)",
		},
		Killer:       event.Player{Name: "Slang", SteamID: "766"},
		Victim:       event.Player{Name: "Urrgence", SteamID: "765"},
		WeaponName:   "AS Val",
		WeaponType:   "Projectile",
		Distance:     event.ParseNumber("17.62"),
		HasLocations: true,
	}
}

func TestDispatch_Delivers(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink)

	assert.True(t, d.Dispatch(context.Background(), testKill(), testChannel))
	require.Len(t, sink.msgs, 1)
	msg := sink.msgs[0]
	assert.Equal(t, "Kill", msg.Title)
	assert.Equal(t, "Slang killed Urrgence with AS Val (17.62 m)", msg.Description)
	assert.Contains(t, msg.Fields, Field{Name: "Distance", Value: "17.62 m", Inline: true})
	assert.Equal(t, time.Date(2025, 7, 19, 18, 35, 44, 0, time.UTC), msg.Timestamp)
}

func TestDispatch_NilSink(t *testing.T) {
	d := NewDispatcher(nil)
	assert.False(t, d.HasSink())
	assert.False(t, d.Dispatch(context.Background(), testKill(), testChannel))
}

func TestDispatch_MissingFormatter(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, WithFormatters(Formatters{}))
	assert.False(t, d.Dispatch(context.Background(), testKill(), testChannel))
	assert.Empty(t, sink.msgs)
}

func TestDispatch_SinkErrorSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("boom")}
	d := NewDispatcher(sink)
	assert.False(t, d.Dispatch(context.Background(), testKill(), testChannel))
	assert.Len(t, sink.msgs, 1)
}

func TestDispatch_DetachedFromCancellation(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, WithTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, d.Dispatch(ctx, testKill(), testChannel))

	require.Len(t, sink.ctxErrs, 1)
	assert.NoError(t, sink.ctxErrs[0])
}

func TestDispatch_Timeout(t *testing.T) {
	slow := SinkFunc(func(ctx context.Context, _ Channel, _ Message) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d := NewDispatcher(slow, WithTimeout(20*time.Millisecond))

	start := time.Now()
	assert.False(t, d.Dispatch(context.Background(), testKill(), testChannel))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDefaultFormatters_CoverEveryCategory(t *testing.T) {
	f := DefaultFormatters()
	for _, c := range event.Categories() {
		assert.NotNil(t, f[c], c)
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name  string
		cat   event.Category
		ev    event.Event
		title string
		field Field
	}{
		{
			name:  "suicide",
			cat:   event.CategoryKill,
			ev:    &event.Suicide{Player: event.Player{Name: "Urrgence"}},
			title: "Suicide",
			field: Field{Name: "Player", Value: "Urrgence", Inline: true},
		},
		{
			name:  "admin custom",
			cat:   event.CategoryAdmin,
			ev:    &event.AdminCommand{Admin: event.Player{Name: "A", SteamID: "1"}, Command: "Announce", Custom: true},
			title: "Admin custom command",
			field: Field{Name: "Admin", Value: "A (1)", Inline: true},
		},
		{
			name: "economy with balance",
			cat:  event.CategoryEconomy,
			ev: &event.EconomyTransaction{
				Type:    event.TradeSale,
				Amount:  event.Num(1200),
				Balance: &event.BalanceChange{CashBefore: event.Num(100), CashAfter: event.Num(1300)},
			},
			title: "Trade sale",
			field: Field{Name: "Cash", Value: "100 → 1300", Inline: true},
		},
		{
			name: "fame with breakdown",
			cat:  event.CategoryFame,
			ev: &event.FamePointsAward{
				Amount:   event.Num(10),
				Periodic: true,
				Details: []event.FameDetail{
					{Reason: "KillingZombie", Amount: event.Num(7)},
					{Reason: "Looting", Amount: event.Num(3)},
				},
			},
			title: "Fame points",
			field: Field{Name: "Breakdown", Value: "KillingZombie: 7\nLooting: 3"},
		},
		{
			name:  "login drone",
			cat:   event.CategoryLogin,
			ev:    &event.LoginLogout{LoggedIn: true, Drone: true},
			title: "Login",
			field: Field{Name: "Mode", Value: "drone", Inline: true},
		},
		{
			name:  "raid until",
			cat:   event.CategoryRaidProtection,
			ev:    &event.RaidProtectionChange{State: "activated", FlagID: "42", Until: time.Date(2025, 7, 19, 20, 0, 0, 0, time.UTC)},
			title: "Raid protection activated",
			field: Field{Name: "Until", Value: "2025-07-19 20:00:00 UTC", Inline: true},
		},
		{
			name:  "violation",
			cat:   event.CategoryViolation,
			ev:    &event.Violation{Type: event.ViolationBan, Reason: "Cheating"},
			title: "Violation: ban",
			field: Field{Name: "Reason", Value: "Cheating", Inline: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := DefaultFormatters()[tt.cat](tt.ev)
			require.True(t, ok)
			assert.Equal(t, tt.title, msg.Title)
			assert.Contains(t, msg.Fields, tt.field)
		})
	}
}

func TestFormatters_WrongVariant(t *testing.T) {
	_, ok := DefaultFormatters()[event.CategoryChest](testKill())
	assert.False(t, ok)
}

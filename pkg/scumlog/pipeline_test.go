package scumlog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/scumlog/scumlog-go/internal/cursor"
	"github.com/scumlog/scumlog-go/pkg/scumlog"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

var (
	testNow     = time.Date(2025, 7, 19, 20, 0, 0, 0, time.UTC)
	testChannel = scumlog.Channel{ID: "1", Token: "t"}
)

const (
	killLine1 = "2025.07.19-18.35.44: Died: Urrgence (76561198086065370), Killer: Slang (76561197987224276) Weapon: Weapon_AS_Val_C [Projectile] S[KillerLoc : -47875.42, -319777.94, 16448.08 VictimLoc: -46187.92, -320285.81, 16447.89, Distance: 17.62 m] C[...]"
	killLine2 = "2025.07.19-18.40.00: Died: Slang (76561197987224276), Killer: Urrgence (76561198086065370) Weapon: Weapon_M1911_C [Projectile]"
	noise     = "Game version: 0.9.5.84713"
)

type fakeSink struct {
	mu   sync.Mutex
	msgs []scumlog.Message
	err  error
}

func (s *fakeSink) Send(_ context.Context, _ scumlog.Channel, msg scumlog.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func (s *fakeSink) descriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.msgs))
	for i, m := range s.msgs {
		out[i] = m.Description
	}
	return out
}

func encode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

// writeLog creates a UTF-16LE log with a BOM. Each line is CRLF terminated.
func writeLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	data := append([]byte{0xFF, 0xFE}, encode(t, joinLines(lines))...)
	require.NoError(t, os.WriteFile(path, data, 0644))
	// Keep birth times of successive files apart.
	time.Sleep(15 * time.Millisecond)
}

func appendLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write(encode(t, joinLines(lines)))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

type env struct {
	logDir   string
	stateDir string
	sink     *fakeSink
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		logDir:   t.TempDir(),
		stateDir: t.TempDir(),
		sink:     &fakeSink{},
	}
}

func (e *env) source(c event.Category) scumlog.Source {
	return scumlog.Source{Category: c, Dir: e.logDir, Enabled: true, Channel: testChannel}
}

func (e *env) pipeline(t *testing.T, c event.Category) *scumlog.Pipeline {
	t.Helper()
	p, err := scumlog.NewPipeline(e.source(c),
		scumlog.WithSink(e.sink),
		scumlog.WithStateDir(e.stateDir),
		scumlog.WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, err)
	return p
}

func (e *env) storedCursor(t *testing.T, name string) cursor.Cursor {
	t.Helper()
	store, err := cursor.NewStore(e.stateDir)
	require.NoError(t, err)
	cur, found, err := store.Load(name)
	require.NoError(t, err)
	require.True(t, found)
	return cur
}

func TestNewPipeline_InitFailures(t *testing.T) {
	e := newEnv(t)
	base := e.source(event.CategoryKill)

	tests := []struct {
		name   string
		mutate func(*scumlog.Source)
		opts   []scumlog.Option
		want   error
	}{
		{"disabled", func(s *scumlog.Source) { s.Enabled = false }, nil, scumlog.ErrSourceDisabled},
		{"no sink", nil, []scumlog.Option{scumlog.WithSink(nil)}, scumlog.ErrNoSink},
		{"no channel", func(s *scumlog.Source) { s.Channel.Token = "" }, nil, scumlog.ErrNoChannel},
		{"unknown category", func(s *scumlog.Source) { s.Category = "weather" }, nil, scumlog.ErrUnknownCategory},
		{"missing dir", func(s *scumlog.Source) { s.Dir = filepath.Join(e.logDir, "nope") }, nil, scumlog.ErrLogDirNotFound},
		{"no state dir", nil, []scumlog.Option{scumlog.WithStateDir("")}, scumlog.ErrNoStateDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := base
			if tt.mutate != nil {
				tt.mutate(&src)
			}
			opts := append([]scumlog.Option{
				scumlog.WithSink(e.sink),
				scumlog.WithStateDir(e.stateDir),
			}, tt.opts...)

			p, err := scumlog.NewPipeline(src, opts...)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.want)

			var pe *scumlog.PipelineError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, scumlog.OpInit, pe.Op)
		})
	}
}

func TestNewPipeline_Defaults(t *testing.T) {
	e := newEnv(t)
	src := e.pipeline(t, event.CategoryVehicle).Source()
	assert.Equal(t, "vehicle", src.Name)
	assert.Equal(t, "vehicle_destruction_*.log", src.Pattern)
	assert.Equal(t, scumlog.UTF16LE, src.Encoding)
}

func TestTick_NoLogFile(t *testing.T) {
	e := newEnv(t)
	p := e.pipeline(t, event.CategoryKill)

	res, err := p.Tick(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.File)

	// The first file to appear after an empty directory is read in full.
	writeLog(t, filepath.Join(e.logDir, "kill_20250719000000.log"), killLine1)
	res, err = p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Events)
	assert.Equal(t, 1, res.Dispatched)
}

func TestTick_FirstRunStartsAtEnd(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.logDir, "kill_20250719000000.log")
	writeLog(t, path, killLine1, noise)
	p := e.pipeline(t, event.CategoryKill)

	res, err := p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, res.Events)
	assert.Zero(t, e.sink.count())
	assert.Equal(t, 2, e.storedCursor(t, "kill").LastLineNumber)

	appendLog(t, path, killLine2)
	res, err = p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Lines)
	assert.Equal(t, 1, res.Dispatched)
	assert.Equal(t, []string{"Urrgence killed Slang with M1911"}, e.sink.descriptions())
	assert.Equal(t, 3, p.Cursor().LastLineNumber)
}

func TestTick_UnmatchedLinesAdvanceCursor(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.logDir, "kill_20250719000000.log")
	writeLog(t, path)
	p := e.pipeline(t, event.CategoryKill)
	_, err := p.Tick(context.Background())
	require.NoError(t, err)

	appendLog(t, path, noise, "", noise)
	res, err := p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Lines)
	assert.Zero(t, res.Events)
	assert.Equal(t, 3, e.storedCursor(t, "kill").LastLineNumber)
}

func TestTick_DispatchFailureStillAdvancesCursor(t *testing.T) {
	e := newEnv(t)
	e.sink.err = errors.New("webhook down")
	path := filepath.Join(e.logDir, "kill_20250719000000.log")
	writeLog(t, path)
	p := e.pipeline(t, event.CategoryKill)
	_, err := p.Tick(context.Background())
	require.NoError(t, err)

	appendLog(t, path, killLine1, killLine2)
	res, err := p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Events)
	assert.Zero(t, res.Dispatched)
	assert.Equal(t, 2, e.sink.count(), "each event attempted once")

	cur := e.storedCursor(t, "kill")
	assert.Equal(t, path, cur.CurrentFile)
	assert.Equal(t, 2, cur.LastLineNumber)
	assert.True(t, testNow.Equal(cur.LastUpdate))

	// Nothing is retried.
	e.sink.err = nil
	res, err = p.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Events)
	assert.Equal(t, 2, e.sink.count())
}

func TestTick_SaveFailureStillDispatches(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.logDir, "kill_20250719000000.log")
	writeLog(t, path)
	p := e.pipeline(t, event.CategoryKill)
	_, err := p.Tick(context.Background())
	require.NoError(t, err)

	// Swap the state directory for a regular file so the record cannot be written.
	require.NoError(t, os.RemoveAll(e.stateDir))
	require.NoError(t, os.WriteFile(e.stateDir, []byte("x"), 0o644))

	appendLog(t, path, killLine2)
	res, err := p.Tick(context.Background())
	require.Error(t, err)
	var pe *scumlog.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, scumlog.OpSave, pe.Op)
	assert.Equal(t, "kill", pe.Source)

	assert.Equal(t, 1, res.Events)
	assert.Equal(t, 1, res.Dispatched)
	assert.Equal(t, []string{"Urrgence killed Slang with M1911"}, e.sink.descriptions())
	assert.Equal(t, 1, p.Cursor().LastLineNumber)

	// The in-memory cursor advanced, so the line is not delivered again.
	res, err = p.Tick(context.Background())
	require.Error(t, err)
	assert.Zero(t, res.Events)
	assert.Equal(t, 1, e.sink.count())
}

func TestTick_Rotation(t *testing.T) {
	e := newEnv(t)
	oldPath := filepath.Join(e.logDir, "kill_20250719000000.log")
	writeLog(t, oldPath, killLine1)
	p := e.pipeline(t, event.CategoryKill)
	_, err := p.Tick(context.Background())
	require.NoError(t, err)

	newPath := filepath.Join(e.logDir, "kill_20250720000000.log")
	writeLog(t, newPath, noise, killLine1, killLine2)
	require.NoError(t, os.Remove(oldPath))

	res, err := p.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Rotated)
	assert.Equal(t, newPath, res.File)
	assert.Equal(t, 3, res.Lines)
	assert.Equal(t, 2, res.Dispatched)

	cur := e.storedCursor(t, "kill")
	assert.Equal(t, newPath, cur.CurrentFile)
	assert.Equal(t, 3, cur.LastLineNumber)
}

func TestTick_ResumesAfterRestart(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.logDir, "kill_20250719000000.log")
	writeLog(t, path, killLine1)
	_, err := e.pipeline(t, event.CategoryKill).Tick(context.Background())
	require.NoError(t, err)

	appendLog(t, path, killLine2)
	restarted := e.pipeline(t, event.CategoryKill)
	res, err := restarted.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, 1, res.Dispatched)
	assert.Equal(t, []string{"Urrgence killed Slang with M1911"}, e.sink.descriptions())
}

func TestTick_TrackedFileDeletedWhileStopped(t *testing.T) {
	e := newEnv(t)
	oldPath := filepath.Join(e.logDir, "kill_20250719000000.log")
	writeLog(t, oldPath, noise)
	_, err := e.pipeline(t, event.CategoryKill).Tick(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(oldPath))
	writeLog(t, filepath.Join(e.logDir, "kill_20250720000000.log"), killLine1)

	res, err := e.pipeline(t, event.CategoryKill).Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, 1, res.Dispatched)
}

func TestTick_CorruptCursorStartsAtEnd(t *testing.T) {
	e := newEnv(t)
	writeLog(t, filepath.Join(e.logDir, "kill_20250719000000.log"), killLine1)
	require.NoError(t, os.WriteFile(filepath.Join(e.stateDir, "kill.json"), []byte("{not json"), 0644))

	res, err := e.pipeline(t, event.CategoryKill).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, e.sink.count())
}

func TestTick_EconomyBalanceEnrichment(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.logDir, "economy_20250719000000.log")
	writeLog(t, path)
	p := e.pipeline(t, event.CategoryEconomy)
	_, err := p.Tick(context.Background())
	require.NoError(t, err)

	appendLog(t, path,
		"2025.07.19-18.35.44: [Trade] Before selling tradeables to trader A_0_Armory, player Urrgence(765) had 100 cash, 200 account balance and 1 gold and trader had 10000 funds.",
		"2025.07.19-18.35.45: [Trade] Tradeable (Weapon_AK47 (x1)) sold by Urrgence(765) for 1200 (1200 + 0 worth of contained items) to trader A_0_Armory, old amount in store was 5, new amount is 6, and effective users online: 3",
		"2025.07.19-18.35.46: [Trade] After tradeable sale to trader A_0_Armory, player Urrgence(765) has 1300 cash, 200 account balance and 1 gold and trader has 8800 funds.",
	)
	res, err := p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Lines)
	assert.Equal(t, 1, res.Events)
	assert.Equal(t, 2, res.Dropped)

	require.Equal(t, 1, e.sink.count())
	var fields []string
	for _, f := range e.sink.msgs[0].Fields {
		fields = append(fields, f.Name+"="+f.Value)
	}
	assert.Contains(t, fields, "Cash=100 → 1300")
	assert.Contains(t, fields, "Trader funds=10000 → 8800")
}

func TestTick_FameBreakdown(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.logDir, "famepoints_20250719000000.log")
	writeLog(t, path)
	p := e.pipeline(t, event.CategoryFame)
	_, err := p.Tick(context.Background())
	require.NoError(t, err)

	appendLog(t, path,
		"Player Zeltaon(765) was awarded 20.000000 fame points in 10 minutes for a total of 1611.960938",
		"Player Zeltaon(765) fame points breakdown: KillingZombie = 12.000000",
		"Player Zeltaon(765) fame points breakdown: Looting = 8.000000",
		"Player Other(766) fame points breakdown: Orphan = 1.000000",
	)
	res, err := p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Events)
	require.Equal(t, 1, e.sink.count())

	var breakdown string
	for _, f := range e.sink.msgs[0].Fields {
		if f.Name == "Breakdown" {
			breakdown = f.Value
		}
	}
	assert.Equal(t, "KillingZombie: 12.000000\nLooting: 8.000000", breakdown)
	assert.Equal(t, testNow, e.sink.msgs[0].Timestamp)
}

func TestTick_CancelledContext(t *testing.T) {
	e := newEnv(t)
	p := e.pipeline(t, event.CategoryKill)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Tick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse(t *testing.T) {
	events, err := scumlog.Parse(event.CategoryKill, []string{noise, killLine1}, func() time.Time { return testNow })
	require.NoError(t, err)
	require.Len(t, events, 1)
	kill := events[0].(*event.Kill)
	assert.Equal(t, "Urrgence", kill.Victim.Name)
	assert.Equal(t, 2, kill.Line)

	_, err = scumlog.Parse("weather", nil, nil)
	assert.ErrorIs(t, err, scumlog.ErrUnknownCategory)
}

func TestParse_UnmatchedLineClosesFameWindow(t *testing.T) {
	events, err := scumlog.Parse(event.CategoryFame, []string{
		"Player Zeltaon(765) was awarded 20.000000 fame points in 10 minutes for a total of 1611.960938",
		"Player Zeltaon(765) fame points breakdown: KillingZombie = 12.000000",
		"",
		"Player Zeltaon(765) fame points breakdown: Looting = 8.000000",
		"Game version: 0.9.5",
		"Player Zeltaon(765) fame points breakdown: Late = 1.000000",
	}, func() time.Time { return testNow })
	require.NoError(t, err)
	require.Len(t, events, 1)

	award := events[0].(*event.FamePointsAward)
	require.Len(t, award.Details, 2)
	assert.Equal(t, "KillingZombie", award.Details[0].Reason)
	assert.Equal(t, "Looting", award.Details[1].Reason)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kill_20250719000000.log")
	writeLog(t, path, killLine1, killLine2)

	events, err := scumlog.ParseFile(event.CategoryKill, path, "")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "AS_Val", events[0].(*event.Kill).WeaponID)
}

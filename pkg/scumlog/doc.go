// Package scumlog relays SCUM dedicated-server log events to a notification
// sink.
//
// Each configured log category runs as an independent [Pipeline]. A tick
// locates the active log file, reads the lines appended since the persisted
// cursor, parses them into typed events, correlates related lines and hands
// the resulting events to the sink. A [Poller] drives the ticks of many
// pipelines concurrently.
//
// # Basic Usage
//
//	sink := scumlog.NewDiscordSink()
//	p, err := scumlog.NewPipeline(scumlog.Source{
//	    Category: event.CategoryKill,
//	    Dir:      `C:\scumserver\SCUM\Saved\SaveFiles\Logs`,
//	    Enabled:  true,
//	    Channel:  scumlog.Channel{ID: "123", Token: "secret"},
//	},
//	    scumlog.WithStateDir("state"),
//	    scumlog.WithSink(sink),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	poller := scumlog.NewPoller([]*scumlog.Pipeline{p}, scumlog.WithInterval(5*time.Second))
//	if err := poller.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Delivery
//
// Delivery is at most once. The cursor is persisted as soon as a batch has
// been read, before any event is sent, and a failed or slow sink never holds
// the cursor back. Events lost to a sink failure are logged and not retried.
//
// # First Run
//
// A source without a stored cursor starts at the end of the current log
// file, so enabling a category does not replay its history. Later files are
// always read from their first line.
package scumlog

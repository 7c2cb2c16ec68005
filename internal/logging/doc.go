// Package logging builds the slog loggers pagecheck writes diagnostics with.
//
// The text handler prints one line per record and lifts the page being
// checked into a prefix, so logs of a concurrent batch stay attributable:
//
//	14:02:11 DEBUG [https://lp.example.com/?click_key=****1234] parsed page bytes=5120
//
// Both formats mask tokens and sensitive query parameters before anything is
// written. Config.File adds a JSON copy of every record
// for --log-file, and LevelTrace sits below Debug for per-selector output.
//
// Colors appear only on a terminal. NO_COLOR and PAGECHECK_NO_COLOR turn
// them off.
//
// Tests route records through t.Log with ForTest:
//
//	ctx := logging.NewContext(context.Background(), logging.ForTest(t))
package logging

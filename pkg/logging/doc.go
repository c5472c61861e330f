// Package logging provides subsystem-tagged structured logging for wsdlsync.
//
// Every record carries a subsystem name so that output from the watcher,
// the monitor, and the generator can be told apart:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Monitor", "Started monitoring %s", target)
//	logging.Error("Generator", err, "Generation failed for %s", target)
//
// In channel mode (InitForChannel) entries are delivered on a buffered
// channel instead of being written, which lets tests and embedders observe
// them. When the channel is full, entries are dropped with a note on stderr.
package logging

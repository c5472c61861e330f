// Package events renders lifecycle events (monitoring started, WSDL changed,
// generation finished, ...) into human readable lines and records them in
// the log sink and the structured log.
//
// Messages come from text/template templates keyed by EventReason. The
// sprig function map is available, so templates can shorten fingerprints
// with "trunc" or provide fallbacks with "default".
package events

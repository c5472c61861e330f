// Package reconciler is the single entry point for every regeneration
// trigger.
//
// # Overview
//
// Two sources ask for a target to be regenerated: a params document that
// changed on disk, and a remote WSDL whose fingerprint changed. Both reach
// Coordinator.Regenerate, which skips the request when this process wrote
// the document a moment ago (RecentlyWritten) or when a run for the target
// is still executing (InFlightGeneration). Only then is the generator
// invoked.
//
// # Architecture
//
//   - Coordinator: the entry point, the event loop and the worker pool
//   - FilesystemDetector: fsnotify watch on a workspace root, debounced
//   - ReconcileQueue: per-target deduplicating work queue
//   - ReconcileMetrics: per-source counters and the last outcome per target
//
// # Usage
//
//	coord := reconciler.NewCoordinator(cfg, invoker, notifier, recorder)
//	if err := coord.Start(ctx); err != nil {
//	    return fmt.Errorf("failed to start reconciliation: %w", err)
//	}
//	defer coord.Stop()
package reconciler

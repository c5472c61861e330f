package reconciler

import (
	"context"
	"time"

	"wsdlsync/internal/runstate"
	"wsdlsync/internal/target"
)

// ChangeEvent represents a detected change of a params document.
type ChangeEvent struct {
	// Path is the params document that changed.
	Path string

	// Operation describes what kind of change occurred.
	Operation ChangeOperation

	// Timestamp is when the change was detected.
	Timestamp time.Time

	// Source indicates where the change came from.
	Source ChangeSource
}

// ChangeOperation represents the type of change detected.
type ChangeOperation string

const (
	// OperationCreate indicates a new document was created.
	OperationCreate ChangeOperation = "Create"

	// OperationUpdate indicates an existing document was modified.
	OperationUpdate ChangeOperation = "Update"

	// OperationDelete indicates a document was deleted.
	OperationDelete ChangeOperation = "Delete"
)

// ChangeSource indicates where a trigger originated.
type ChangeSource string

const (
	// SourceFilesystem indicates the change came from filesystem watching.
	SourceFilesystem ChangeSource = "Filesystem"

	// SourceRemote indicates a monitored WSDL changed.
	SourceRemote ChangeSource = "RemoteWSDL"

	// SourceManual indicates the user asked for the run.
	SourceManual ChangeSource = "Manual"
)

// Skip reasons reported when a trigger does not run the generator.
const (
	SkipSuppressed = "suppressed"
	SkipBusy       = "busy"
	SkipDisabled   = "disabled"
)

// ReconcileRequest asks for one target to be reconciled.
type ReconcileRequest struct {
	Target    target.Target
	Operation ChangeOperation
	Source    ChangeSource
}

// ChangeDetector is the interface for components that detect changes of
// params documents.
type ChangeDetector interface {
	// Start begins watching for changes and sends them to changes.
	Start(ctx context.Context, changes chan<- ChangeEvent) error

	// Stop gracefully stops the change detector.
	Stop() error

	// GetSource returns the source type this detector monitors.
	GetSource() ChangeSource
}

// ReconcileQueue represents a queue of targets awaiting reconciliation.
type ReconcileQueue interface {
	// Add queues req. A target that is already queued has its entry
	// replaced. A target that is being processed is rejected and Add
	// returns false.
	Add(req ReconcileRequest) bool

	// Get retrieves the next request.
	// Blocks until a request is available or the context is cancelled.
	Get(ctx context.Context) (ReconcileRequest, bool)

	// Done marks a request as processed.
	Done(req ReconcileRequest)

	// Len returns the current queue length.
	Len() int

	// Shutdown signals the queue to stop accepting new items.
	Shutdown()
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	// Workspace is the root watched for params documents.
	Workspace string

	// AutoRunOnChange regenerates when a params document changes on disk.
	AutoRunOnChange bool

	// ShowNotifications enables success and failure notifications.
	ShowNotifications bool

	// AutoStartMonitoring starts monitoring for created documents.
	AutoStartMonitoring bool

	// SuppressionWindow is how long a document written by wsdlsync
	// ignores triggers. Zero disables suppression.
	SuppressionWindow time.Duration

	// RunState, when set, shares written markers with other processes.
	RunState *runstate.Store

	// DebounceInterval is how long to wait for additional file events.
	// Defaults to 500ms if not specified.
	DebounceInterval time.Duration

	// WorkerCount is the number of concurrent reconciliation workers.
	// Defaults to 2 if not specified.
	WorkerCount int
}

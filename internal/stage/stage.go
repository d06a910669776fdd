// Package stage tracks each asset's progress through loading stages,
// independently per category. Stages only ever move forward, and a failed
// pair is terminal; the tracker enforces both rules so loader bugs cannot
// corrupt readiness state.
package stage

import "github.com/calder-games/assetforge/internal/catalog"

// LoadStage is the ordered phase an (asset, category) pair passes through.
// No stage is skipped or revisited for the same pair within a session.
type LoadStage uint8

const (
	StageNotStarted LoadStage = iota
	StageDiscovered
	StageConfigurationParsed
	StageContentProcessed
	StageComplete
)

var stageNames = [...]string{
	StageNotStarted:          "not_started",
	StageDiscovered:          "discovered",
	StageConfigurationParsed: "configuration_parsed",
	StageContentProcessed:    "content_processed",
	StageComplete:            "complete",
}

func (s LoadStage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// State is the coarse readiness state derived from stage plus the failure
// channel.
type State uint8

const (
	StatePending State = iota
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ReasonCode classifies why a pair failed.
type ReasonCode uint8

const (
	ReasonNone ReasonCode = iota
	ReasonUnresolvedReference
	ReasonSemanticValidation
	ReasonResourceAcquisition
	ReasonCancelled
)

func (c ReasonCode) String() string {
	switch c {
	case ReasonUnresolvedReference:
		return "unresolved_reference"
	case ReasonSemanticValidation:
		return "semantic_validation"
	case ReasonResourceAcquisition:
		return "resource_acquisition"
	case ReasonCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Reason is the descriptive cause attached to a failed pair. Cancellation
// is a lifecycle event rather than a content failure, but it rides the
// same channel so readiness sees a single terminal shape.
type Reason struct {
	Code   ReasonCode
	Detail string
}

func (r Reason) String() string {
	if r.Detail == "" {
		return r.Code.String()
	}
	return r.Code.String() + ": " + r.Detail
}

// UnresolvedReference builds the reason for a slug that did not resolve.
func UnresolvedReference(slug catalog.Slug) Reason {
	return Reason{Code: ReasonUnresolvedReference, Detail: slug.String()}
}

// SemanticError builds the reason for a category business-rule violation.
func SemanticError(detail string) Reason {
	return Reason{Code: ReasonSemanticValidation, Detail: detail}
}

// ResourceError builds the reason for an underlying resource that could
// not be produced.
func ResourceError(detail string) Reason {
	return Reason{Code: ReasonResourceAcquisition, Detail: detail}
}

// Cancelled is the reason applied to pending pairs of a retired asset.
var Cancelled = Reason{Code: ReasonCancelled}

// Status is the derived per-pair (and, aggregated, per-asset) readiness
// value: Pending, Complete, or Failed with a reason.
type Status struct {
	State  State
	Reason Reason
}

// Pending is the status of a pair with no entry yet.
var Pending = Status{State: StatePending}

// Complete is the status of a pair that reached StageComplete.
var Complete = Status{State: StateComplete}

// Failed builds a terminal failed status.
func Failed(r Reason) Status {
	return Status{State: StateFailed, Reason: r}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s.State == StateComplete || s.State == StateFailed
}

func (s Status) String() string {
	if s.State == StateFailed {
		return "failed(" + s.Reason.String() + ")"
	}
	return s.State.String()
}

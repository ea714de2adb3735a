// Package deploy submits one built assignment payload to many courses,
// sequentially, isolating per-course failures into a deployment report.
package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursecast/internal/assignment"
	"coursecast/internal/canvas"
)

// Creator is the slice of the gateway the engine needs.
type Creator interface {
	CreateAssignment(ctx context.Context, courseID int64, body any) (*canvas.Assignment, error)
	AssignmentURL(courseID, assignmentID int64) string
}

// State tracks one deployment run through its lifecycle.
type State int

const (
	StateBuilt State = iota
	StateConfirmed
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateConfirmed:
		return "confirmed"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "built"
	}
}

// coursePacing is the fixed wait between consecutive course submissions, on
// top of whatever spacing the gateway pacer enforces.
const coursePacing = 500 * time.Millisecond

// Result is one course's outcome. Err is empty on success.
type Result struct {
	CourseID     int64
	CourseName   string
	AssignmentID int64
	URL          string
	Message      string
	Err          string
}

// Succeeded reports whether this course's submission worked.
func (r Result) Succeeded() bool { return r.Err == "" }

// Report is the final account of one deployment run. Produced once,
// reported to the operator, never persisted or retried.
type Report struct {
	RunID     string
	DryRun    bool
	Attempted int
	Succeeded int
	Results   []Result
}

// Engine drives one deployment run through Built → Confirmed → Running →
// Completed. A new Engine is created per run.
type Engine struct {
	client  Creator
	clock   canvas.Clock
	log     *zap.Logger
	dryRun  bool
	state   State
	payload *assignment.Payload
	targets []canvas.Course
}

// NewEngine prepares a run in the Built state. The target selection is
// snapshotted here so later mutations of the caller's slice cannot change
// what Running iterates over.
func NewEngine(client Creator, payload *assignment.Payload, targets []canvas.Course, dryRun bool, log *zap.Logger) *Engine {
	snapshot := make([]canvas.Course, len(targets))
	copy(snapshot, targets)
	return &Engine{
		client:  client,
		clock:   realClock{},
		log:     log,
		dryRun:  dryRun,
		state:   StateBuilt,
		payload: payload,
		targets: snapshot,
	}
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// WithClock swaps the pacing clock. Test hook.
func (e *Engine) WithClock(c canvas.Clock) *Engine {
	e.clock = c
	return e
}

// State returns the run's current state.
func (e *Engine) State() State { return e.state }

// Targets returns the snapshotted selection, in deployment order.
func (e *Engine) Targets() []canvas.Course { return e.targets }

// Payload returns the payload this run will submit.
func (e *Engine) Payload() *assignment.Payload { return e.payload }

// Confirm records the operator's acknowledgment of the exact target set and
// summary. Declining is handled by the caller simply abandoning the engine;
// this run always aborts on decline.
func (e *Engine) Confirm() error {
	if e.state != StateBuilt {
		return fmt.Errorf("cannot confirm a run in state %s", e.state)
	}
	if len(e.targets) == 0 {
		return fmt.Errorf("no courses selected")
	}
	e.state = StateConfirmed
	return nil
}

// Run executes the deployment. Courses are attempted strictly in selection
// order; a failure on one course never prevents attempts on the rest. Once
// Running there is no cancellation: the batch proceeds to completion.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if e.state != StateConfirmed {
		return nil, fmt.Errorf("cannot run a deployment in state %s", e.state)
	}

	report := &Report{
		RunID:     uuid.NewString(),
		DryRun:    e.dryRun,
		Attempted: len(e.targets),
		Results:   make([]Result, 0, len(e.targets)),
	}

	if e.dryRun {
		// Preview short-circuit: zero gateway calls, synthetic report.
		for _, course := range e.targets {
			report.Results = append(report.Results, Result{
				CourseID:   course.ID,
				CourseName: course.Name,
				Message:    fmt.Sprintf("[dry-run] would create assignment %q in %s", e.payload.Name, course.Name),
			})
		}
		report.Succeeded = len(report.Results)
		e.state = StateCompleted
		e.log.Info("dry-run deployment completed",
			zap.String("run_id", report.RunID),
			zap.Int("courses", report.Attempted))
		return report, nil
	}

	e.state = StateRunning
	for i, course := range e.targets {
		if i > 0 {
			e.clock.Sleep(coursePacing)
		}

		created, err := e.client.CreateAssignment(ctx, course.ID, e.payload)
		if err != nil {
			e.log.Warn("assignment creation failed",
				zap.Int64("course_id", course.ID),
				zap.String("course", course.Name),
				zap.Error(err))
			report.Results = append(report.Results, Result{
				CourseID:   course.ID,
				CourseName: course.Name,
				Err:        err.Error(),
			})
			continue
		}

		report.Results = append(report.Results, Result{
			CourseID:     course.ID,
			CourseName:   course.Name,
			AssignmentID: created.ID,
			URL:          e.client.AssignmentURL(course.ID, created.ID),
			Message:      fmt.Sprintf("created assignment %d", created.ID),
		})
		report.Succeeded++
	}

	e.state = StateCompleted
	e.log.Info("deployment completed",
		zap.String("run_id", report.RunID),
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded))
	return report, nil
}

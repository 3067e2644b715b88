package columnar

import (
	"context"
	"fmt"
)

// StepFunc transforms one materialized frame into the next.
type StepFunc func(*Frame) (*Frame, error)

// Step is a named transformation queued on a Plan.
type Step struct {
	Name  string
	Apply StepFunc
}

// Plan is a deferred computation over appended batches. Append and AddStep
// only record work; Collect is the single point where anything executes.
type Plan struct {
	batches []*Frame
	steps   []Step
}

// NewPlan returns an empty plan.
func NewPlan() *Plan { return &Plan{} }

// Append queues a batch for the schema-tolerant union. Cheap; no compute.
func (p *Plan) Append(batch *Frame) {
	if batch == nil || batch.NumCols() == 0 {
		return
	}
	p.batches = append(p.batches, batch)
}

// AddStep queues a named transformation to run after the union.
func (p *Plan) AddStep(name string, fn StepFunc) {
	p.steps = append(p.steps, Step{Name: name, Apply: fn})
}

// SetSteps replaces the queued steps wholesale. The hub rebuilds a domain's
// stage list on every run, so steps never accumulate across runs.
func (p *Plan) SetSteps(steps []Step) {
	p.steps = append(p.steps[:0], steps...)
}

// IsEmpty reports whether the plan holds no batches.
func (p *Plan) IsEmpty() bool { return len(p.batches) == 0 }

// Reset replaces the plan's contents with a single materialized base frame
// and clears all queued steps. Used when a checkpoint is restored in place
// of the in-memory plan.
func (p *Plan) Reset(base *Frame) {
	p.batches = p.batches[:0]
	p.steps = p.steps[:0]
	if base != nil {
		p.batches = append(p.batches, base)
	}
}

// Collect materializes the plan: unions all appended batches with null-fill,
// then applies the queued steps in order. The plan itself is left untouched,
// so a failed Collect can be retried or superseded by a checkpoint restore.
func (p *Plan) Collect(ctx context.Context) (*Frame, error) {
	frame := EmptyFrame()
	for _, b := range p.batches {
		if frame.NumCols() == 0 {
			frame = b
			continue
		}
		frame = frame.Union(b)
	}

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("plan cancelled before step %q: %w", step.Name, ctx.Err())
		default:
		}
		next, err := step.Apply(frame)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.Name, err)
		}
		frame = next
	}
	return frame, nil
}

package scaling

import (
	"fmt"
	"sort"

	"github.com/stepscale/autoscaler/models"
)

var ErrInvalidStepTable = fmt.Errorf("invalid step table")

// StepTable is a sorted, validated view of a policy's step adjustments.
// Validation happens once at configuration-load time so gap and overlap
// misconfigurations cannot surface during evaluation.
type StepTable struct {
	steps []models.StepAdjustment
}

func NewStepTable(steps []models.StepAdjustment) (*StepTable, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps defined", ErrInvalidStepTable)
	}

	sorted := make([]models.StepAdjustment, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Lower() < sorted[j].Lower()
	})

	for i, step := range sorted {
		if step.Lower() >= step.Upper() {
			return nil, fmt.Errorf("%w: step %s is empty", ErrInvalidStepTable, step)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if step.Lower() < prev.Upper() {
			return nil, fmt.Errorf("%w: steps %s and %s overlap", ErrInvalidStepTable, prev, step)
		}
		if step.Lower() > prev.Upper() {
			return nil, fmt.Errorf("%w: gap between steps %s and %s", ErrInvalidStepTable, prev, step)
		}
	}

	return &StepTable{steps: sorted}, nil
}

// Select returns the delta of the unique step whose [lower, upper) interval
// contains the deviation. A deviation on a shared boundary belongs to the
// step whose lower bound equals it. The second return value is false when the
// deviation lies outside the table's range.
func (t *StepTable) Select(deviation float64) (int, bool) {
	i := sort.Search(len(t.steps), func(i int) bool {
		return t.steps[i].Lower() > deviation
	}) - 1
	if i < 0 {
		return 0, false
	}
	step := t.steps[i]
	if deviation >= step.Upper() {
		return 0, false
	}
	return step.Delta, true
}

func (t *StepTable) Steps() []models.StepAdjustment {
	steps := make([]models.StepAdjustment, len(t.steps))
	copy(steps, t.steps)
	return steps
}

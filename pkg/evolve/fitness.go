// Package evolve holds the data types of the evolutionary search over
// piano rolls: individuals and their multi-objective fitness.
package evolve

import (
	"errors"
	"fmt"
)

// Objectives is the number of fitness values of an individual
const Objectives = 2

// Weights gives the direction of each objective; both are maximized
var Weights = [Objectives]float64{1, 1}

var ErrObjectiveCount = errors.New("evolve: wrong number of fitness values")

// Fitness is the evaluation of an individual. The zero value is an
// unevaluated fitness.
type Fitness struct {
	Values    [Objectives]float64 `json:"values"`
	Evaluated bool                `json:"evaluated"`
}

// Set stores one value per objective and marks the fitness evaluated
func (f *Fitness) Set(values ...float64) error {
	if len(values) != Objectives {
		return fmt.Errorf("%w: got %d, want %d", ErrObjectiveCount, len(values), Objectives)
	}
	copy(f.Values[:], values)
	f.Evaluated = true
	return nil
}

// Valid reports whether the fitness has been evaluated
func (f Fitness) Valid() bool { return f.Evaluated }

// Invalidate clears the fitness, as after the genes changed
func (f *Fitness) Invalidate() {
	*f = Fitness{}
}

// Weighted returns the values multiplied by Weights, so that larger is
// better for every objective.
func (f Fitness) Weighted() [Objectives]float64 {
	var w [Objectives]float64
	for i, v := range f.Values {
		w[i] = v * Weights[i]
	}
	return w
}

// Dominates reports whether f is no worse than o on every objective and
// strictly better on at least one. Unevaluated fitnesses never dominate
// or get dominated.
func (f Fitness) Dominates(o Fitness) bool {
	if !f.Evaluated || !o.Evaluated {
		return false
	}
	a, b := f.Weighted(), o.Weighted()
	better := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			better = true
		}
	}
	return better
}

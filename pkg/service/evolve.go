package service

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/kattn/djgenetics/pkg/config"
	"github.com/kattn/djgenetics/pkg/evolve"
	"github.com/kattn/djgenetics/pkg/logger"
	"github.com/kattn/djgenetics/pkg/output"
)

// EvolveService creates random individuals for the search
type EvolveService struct{}

// NewEvolveService creates a new evolve service
func NewEvolveService() *EvolveService {
	return &EvolveService{}
}

// Individuals prints count random individuals. A zero seed draws from
// the global source; size 0 means evolve.individual_size.
func (es *EvolveService) Individuals(seed uint64, size, count int) ([]*evolve.Individual, error) {
	if size == 0 {
		size = config.GetInt("evolve.individual_size")
	}
	if size < 0 {
		return nil, fmt.Errorf("individual size must be positive, got %d", size)
	}
	if count < 1 {
		return nil, fmt.Errorf("count must be at least 1, got %d", count)
	}

	var r *rand.Rand
	if seed != 0 {
		r = rand.New(rand.NewPCG(seed, seed))
	}
	logger.Debug("Creating individuals", "count", count, "size", size, "seed", seed)
	pop := evolve.NewPopulation(r, count, size)

	rows := make([][]string, 0, len(pop))
	for _, ind := range pop {
		rows = append(rows, []string{ind.ID.String(), fmt.Sprintf("%d", ind.Len()), previewGenes(ind.Genes, 6)})
	}
	return pop, output.PrintList(fmt.Sprintf("%d individual%s", len(pop), pluralize(len(pop))), pop,
		[]string{"ID", "Genes", "Values"}, rows)
}

func previewGenes(genes []float64, n int) string {
	parts := make([]string, 0, n+1)
	for i, g := range genes {
		if i == n {
			parts = append(parts, "…")
			break
		}
		parts = append(parts, fmt.Sprintf("%.2f", g))
	}
	return strings.Join(parts, " ")
}

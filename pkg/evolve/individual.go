package evolve

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	// IndividualSize is the default number of genes
	IndividualSize = 144
	// GeneUpperBound is the exclusive upper bound of a random gene
	GeneUpperBound = 80.0
)

// Individual is one candidate of the search: a fixed-length sequence of
// genes and its fitness.
type Individual struct {
	ID      uuid.UUID `json:"id"`
	Genes   []float64 `json:"genes"`
	Fitness Fitness   `json:"fitness"`
}

// NewIndividual draws size genes uniformly from [0, GeneUpperBound).
// A nil r uses the global source; size <= 0 means IndividualSize.
func NewIndividual(r *rand.Rand, size int) *Individual {
	if size <= 0 {
		size = IndividualSize
	}
	float := rand.Float64
	if r != nil {
		float = r.Float64
	}

	genes := make([]float64, size)
	for i := range genes {
		genes[i] = float() * GeneUpperBound
	}
	return &Individual{ID: uuid.New(), Genes: genes}
}

// NewPopulation returns n random individuals of size genes each
func NewPopulation(r *rand.Rand, n, size int) []*Individual {
	pop := make([]*Individual, 0, max(n, 0))
	for range max(n, 0) {
		pop = append(pop, NewIndividual(r, size))
	}
	return pop
}

// Len returns the number of genes
func (ind *Individual) Len() int { return len(ind.Genes) }

// Clone returns a deep copy under a new ID
func (ind *Individual) Clone() *Individual {
	genes := make([]float64, len(ind.Genes))
	copy(genes, ind.Genes)
	return &Individual{
		ID:      uuid.New(),
		Genes:   genes,
		Fitness: ind.Fitness,
	}
}

// Package demo generates a synthetic case table with the same schema as a
// real results folder, for previewing the viewer without connecting data.
// Values are randomized on every call; only the schema is deterministic.
package demo

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"caseview/domain/results"
)

// Distribution parameters chosen so the synthetic table spans all four
// risk bands and looks like a plausible calibrated model output.
const (
	betaAlpha     = 3.0
	betaBeta      = 4.0
	positiveShare = 0.85
	uncertaintyLo = 0.02
	uncertaintyHi = 0.15
)

var demoFolds = []int{0, 1, 2}

// Generator produces synthetic case tables
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a random source
func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(rand.Uint64()))}
}

// NewGeneratorWithSeed creates a generator with a fixed source, for tests
func NewGeneratorWithSeed(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns n synthetic case records with ids Case-01..Case-NN.
// Patient identifiers are obviously synthetic placeholders; they exist only
// so the schema matches real data and are never surfaced regardless.
func (g *Generator) Generate(n int) *results.CaseTable {
	if n <= 0 {
		return results.NewCaseTable(nil)
	}

	src := rand.NewSource(g.rng.Uint64())
	probDist := distuv.Beta{Alpha: betaAlpha, Beta: betaBeta, Src: src}
	uncertDist := distuv.Uniform{Min: uncertaintyLo, Max: uncertaintyHi, Src: src}

	records := make([]results.CaseRecord, 0, n)
	for i := 1; i <= n; i++ {
		p := clamp01(probDist.Rand())
		yTrue := 0
		if g.rng.Float64() < positiveShare {
			yTrue = 1
		}
		records = append(records, results.CaseRecord{
			CaseID:         fmt.Sprintf("Case-%02d", i),
			PatientID:      fmt.Sprintf("DEMO-%d", i),
			Fold:           demoFolds[g.rng.Intn(len(demoFolds))],
			YTrue:          yTrue,
			PCalibrated:    p,
			UncertaintyStd: uncertDist.Rand(),
			Band:           results.BandForProbability(p),
		})
	}
	return results.NewCaseTable(records)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

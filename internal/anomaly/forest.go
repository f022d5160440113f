package anomaly

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

const (
	forestTrees      = 100
	forestSampleSize = 256
	forestSeed       = 0x524f4c4c // fixed seed keeps runs byte-identical
)

// isoNode is one node of an isolation tree. Leaves record the size of
// the partition that bottomed out there.
type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
}

// Forest is a fitted isolation forest over a standardized feature matrix.
type Forest struct {
	trees      []*isoNode
	sampleSize int
}

// cFactor is the average path length of an unsuccessful BST search over
// n points, used to normalize path lengths into scores.
func cFactor(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649 // Euler-Mascheroni
	return 2*h - 2*float64(n-1)/float64(n)
}

func buildTree(rng *rand.Rand, rows [][]float64, depth, maxDepth int) *isoNode {
	if len(rows) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(rows)}
	}

	dims := len(rows[0])
	// Pick a feature with spread; bail to a leaf if every column is flat.
	order := rng.Perm(dims)
	feature := -1
	var lo, hi float64
	for _, f := range order {
		lo, hi = rows[0][f], rows[0][f]
		for _, r := range rows {
			if r[f] < lo {
				lo = r[f]
			}
			if r[f] > hi {
				hi = r[f]
			}
		}
		if hi > lo {
			feature = f
			break
		}
	}
	if feature < 0 {
		return &isoNode{size: len(rows)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, r := range rows {
		if r[feature] < split {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isoNode{size: len(rows)}
	}
	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildTree(rng, left, depth+1, maxDepth),
		right:   buildTree(rng, right, depth+1, maxDepth),
	}
}

func pathLength(n *isoNode, row []float64, depth int) float64 {
	if n.left == nil {
		return float64(depth) + cFactor(n.size)
	}
	if row[n.feature] < n.split {
		return pathLength(n.left, row, depth+1)
	}
	return pathLength(n.right, row, depth+1)
}

// FitForest trains an isolation forest on the matrix. The RNG is seeded
// with a fixed constant so repeated runs over the same input produce the
// same trees, and therefore the same scores.
func FitForest(matrix [][]float64) *Forest {
	rng := rand.New(rand.NewSource(forestSeed))
	sample := forestSampleSize
	if sample > len(matrix) {
		sample = len(matrix)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sample) + 1)))

	f := &Forest{sampleSize: sample}
	for t := 0; t < forestTrees; t++ {
		rows := make([][]float64, sample)
		for i := range rows {
			rows[i] = matrix[rng.Intn(len(matrix))]
		}
		f.trees = append(f.trees, buildTree(rng, rows, 0, maxDepth))
	}
	return f
}

// Score returns the anomaly score in (0,1) for one row: 2^(-E[h]/c(n)).
// Scores near 1 isolate quickly and are anomalous; scores near 0.5 and
// below are typical.
func (f *Forest) Score(row []float64) float64 {
	total := 0.0
	for _, t := range f.trees {
		total += pathLength(t, row, 0)
	}
	mean := total / float64(len(f.trees))
	c := cFactor(f.sampleSize)
	if c == 0 {
		return 0.5
	}
	return math.Pow(2, -mean/c)
}

// Standardize centers and scales each column to zero mean and unit
// variance. Flat columns are left centered only.
func Standardize(matrix [][]float64) [][]float64 {
	if len(matrix) == 0 {
		return nil
	}
	dims := len(matrix[0])
	out := make([][]float64, len(matrix))
	for i := range out {
		out[i] = make([]float64, dims)
	}

	col := make([]float64, len(matrix))
	for f := 0; f < dims; f++ {
		for i, row := range matrix {
			col[i] = row[f]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		for i, row := range matrix {
			out[i][f] = (row[f] - mean) / std
		}
	}
	return out
}

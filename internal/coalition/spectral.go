package coalition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultEmbeddingDim is the embedding dimensionality used by the
// pipeline. Small graphs are embedded with fewer dimensions (n-2 at
// most, after dropping the trivial eigenvector).
const DefaultEmbeddingDim = 8

// SpectralEmbedding embeds the graph via the symmetric normalized
// Laplacian L = I - D^-1/2 W D^-1/2.
//
// The eigenvectors for the dim smallest non-trivial eigenvalues become
// the coordinate axes (the trivial near-zero eigenvector is dropped).
// Rows are keyed by g.Nodes order. Zero-degree nodes have no Laplacian
// structure; their rows come out near-constant and they end up grouped
// together by the clusterer, which is the intended behavior for members
// with no recorded votes.
func SpectralEmbedding(g *Graph, dim int) (map[string][]float64, error) {
	n := len(g.Nodes)
	if n == 0 {
		return map[string][]float64{}, nil
	}
	if n == 1 {
		// A single node has only the trivial eigenvector.
		return map[string][]float64{g.Nodes[0]: {0}}, nil
	}
	if dim <= 0 {
		dim = DefaultEmbeddingDim
	}
	if max := n - 2; dim > max {
		dim = max
	}
	if dim < 1 {
		dim = 1
	}

	// D^-1/2, with 0 for isolated nodes.
	invSqrt := make([]float64, n)
	for i := 0; i < n; i++ {
		if d := g.Degree(i); d > 0 {
			invSqrt[i] = 1 / math.Sqrt(d)
		}
	}

	lap := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		lap.SetSym(i, i, 1)
	}
	for k, w := range g.weights {
		i, j := k[0], k[1]
		lap.SetSym(i, j, -w*invSqrt[i]*invSqrt[j])
	}

	var eig mat.EigenSym
	if !eig.Factorize(lap, true) {
		return nil, fmt.Errorf("laplacian eigendecomposition failed")
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// gonum returns eigenvalues in ascending order; column 0 is the
	// trivial eigenvector, columns 1..dim are the embedding axes.
	embedding := make(map[string][]float64, n)
	for i, id := range g.Nodes {
		row := make([]float64, dim)
		for d := 0; d < dim; d++ {
			row[d] = vecs.At(i, d+1)
		}
		embedding[id] = row
	}
	return embedding, nil
}

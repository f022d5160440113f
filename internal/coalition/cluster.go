package coalition

import (
	"math"
	"sort"
)

// cosineDistance is 1 - cosine similarity. A zero vector has no
// direction; its distance to anything is defined as 1 so isolated
// members neither attract nor repel real blocs.
func cosineDistance(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Guard tiny float drift outside [-1, 1].
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return 1 - sim
}

// Agglomerate performs average-linkage agglomerative clustering with
// cosine affinity, stopping at k clusters. Returns cluster assignments
// indexed like points. Assignments are renumbered 0..k-1 in order of
// first appearance so the labeling is deterministic.
func Agglomerate(points [][]float64, k int) []int {
	n := len(points)
	if n == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	// Precompute pairwise distances once; linkage updates average them.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = cosineDistance(points[i], points[j])
			}
		}
	}

	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	avgLinkage := func(a, b []int) float64 {
		sum := 0.0
		for _, i := range a {
			for _, j := range b {
				sum += dist[i][j]
			}
		}
		return sum / float64(len(a)*len(b))
	}

	for len(clusters) > k {
		bi, bj, best := 0, 1, math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if d := avgLinkage(clusters[i], clusters[j]); d < best {
					bi, bj, best = i, j, d
				}
			}
		}
		merged := append(append([]int{}, clusters[bi]...), clusters[bj]...)
		sort.Ints(merged)
		next := make([][]int, 0, len(clusters)-1)
		for idx, c := range clusters {
			if idx != bi && idx != bj {
				next = append(next, c)
			}
		}
		clusters = append(next, merged)
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	// Stable numbering: sort clusters by smallest member index.
	sort.Slice(clusters, func(a, b int) bool { return clusters[a][0] < clusters[b][0] })
	for cid, c := range clusters {
		for _, i := range c {
			assign[i] = cid
		}
	}
	return assign
}

// Silhouette computes the mean silhouette coefficient for an assignment
// under cosine distance. Higher is better; singleton clusters score 0
// for their lone member per the standard definition.
func Silhouette(points [][]float64, assign []int) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	byCluster := map[int][]int{}
	for i, c := range assign {
		byCluster[c] = append(byCluster[c], i)
	}
	if len(byCluster) < 2 {
		return 0
	}

	total := 0.0
	for i := 0; i < n; i++ {
		own := byCluster[assign[i]]
		if len(own) == 1 {
			continue // s(i) = 0
		}

		a := 0.0
		for _, j := range own {
			if j != i {
				a += cosineDistance(points[i], points[j])
			}
		}
		a /= float64(len(own) - 1)

		b := math.Inf(1)
		for c, idxs := range byCluster {
			if c == assign[i] {
				continue
			}
			sum := 0.0
			for _, j := range idxs {
				sum += cosineDistance(points[i], points[j])
			}
			if avg := sum / float64(len(idxs)); avg < b {
				b = avg
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}

// SelectClusters runs Agglomerate for every cluster count in [kMin,
// kMax] and returns the assignment maximizing the silhouette score,
// along with the chosen k. Ties break toward fewer clusters.
func SelectClusters(points [][]float64, kMin, kMax int) ([]int, int) {
	n := len(points)
	if n == 0 {
		return nil, 0
	}
	if kMax > n {
		kMax = n
	}
	if kMin > kMax {
		kMin = kMax
	}

	bestAssign := Agglomerate(points, kMin)
	bestK := kMin
	bestScore := Silhouette(points, bestAssign)
	for k := kMin + 1; k <= kMax; k++ {
		assign := Agglomerate(points, k)
		if score := Silhouette(points, assign); score > bestScore {
			bestAssign, bestK, bestScore = assign, k, score
		}
	}
	return bestAssign, bestK
}

package cluster

import "container/heap"

// Scorer computes the similarity of two normalized tokens in [0,1].
type Scorer func(a, b string) float64

type pair struct {
	distance float64
	x, y     int
}

// pairHeap orders candidate pairs by ascending distance, then by id for
// deterministic tie-breaking.
type pairHeap []pair

func (h pairHeap) Len() int { return len(h) }

func (h pairHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}
	if h[i].x != h[j].x {
		return h[i].x < h[j].x
	}
	return h[i].y < h[j].y
}

func (h pairHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pairHeap) Push(v any) { *h = append(*h, v.(pair)) }

func (h *pairHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Engine clusters the ids of one dictionary into bins. State is fresh
// per run: build a new Engine (and a new Dict) for every clustering
// pass, since file membership may have changed.
type Engine struct {
	dict     *Dict
	binCount int
	bins     map[int][]int
	idToBin  map[int]int
}

// NewEngine wraps a populated dictionary.
func NewEngine(dict *Dict) *Engine {
	return &Engine{
		dict:    dict,
		bins:    make(map[int][]int),
		idToBin: make(map[int]int),
	}
}

// BinOf returns the bin an id was clustered into.
func (e *Engine) BinOf(id int) (int, bool) {
	bin, ok := e.idToBin[id]
	return bin, ok
}

// Title returns the label for a bin: the raw string with the highest
// occurrence count among its members, later-registered winning ties the
// same way every run.
func (e *Engine) Title(bin int) string {
	best := ""
	bestCount := 0
	for _, id := range e.bins[bin] {
		word, count := e.dict.WordAndCount(id)
		if count >= bestCount {
			best = word
			bestCount = count
		}
	}
	return best
}

// Run performs the clustering: score every unordered id pair, keep pairs
// at or above threshold, and merge greedily from the most similar pair
// down. Ids whose raw string occurred more than once are pre-binned so
// duplicate names cluster even without a distinct partner.
func (e *Engine) Run(threshold float64, score Scorer) {
	size := e.dict.Size()
	pairs := &pairHeap{}

	for y := 0; y < size; y++ {
		tokenY := e.dict.Token(y)
		for x := 0; x < y; x++ {
			c := score(e.dict.Token(x), tokenY)
			if c >= threshold {
				heap.Push(pairs, pair{distance: 1.0 - c, x: x, y: y})
			}
		}
		if word, count := e.dict.WordAndCount(y); word != "" && count > 1 {
			e.bins[e.binCount] = []int{y}
			e.idToBin[y] = e.binCount
			e.binCount++
		}
	}

	for pairs.Len() > 0 {
		p := heap.Pop(pairs).(pair)

		binX, okX := e.idToBin[p.x]
		binY, okY := e.idToBin[p.y]

		switch {
		case !okX && !okY:
			e.bins[e.binCount] = []int{p.x, p.y}
			e.idToBin[p.x] = e.binCount
			e.idToBin[p.y] = e.binCount
			e.binCount++
		case okX && !okY:
			e.bins[binX] = append(e.bins[binX], p.y)
			e.idToBin[p.y] = binX
		case okY && !okX:
			e.bins[binY] = append(e.bins[binY], p.x)
			e.idToBin[p.x] = binY
		case binX != binY:
			e.bins[binX] = append(e.bins[binX], e.bins[binY]...)
			for _, id := range e.bins[binY] {
				e.idToBin[id] = binX
			}
			delete(e.bins, binY)
		}
	}
}

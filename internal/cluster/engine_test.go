package cluster

import (
	"reflect"
	"sort"
	"testing"

	"tagger/internal/similarity"
)

func runEngine(t *testing.T, words []string, threshold float64) *Engine {
	t.Helper()
	d := NewDict()
	for _, w := range words {
		d.Add(w)
	}
	e := NewEngine(d)
	e.Run(threshold, similarity.Score)
	return e
}

func binMembers(e *Engine, d *Dict, id int) []string {
	bin, ok := e.BinOf(id)
	if !ok {
		return nil
	}
	var words []string
	for _, member := range e.bins[bin] {
		words = append(words, d.Word(member))
	}
	sort.Strings(words)
	return words
}

func TestEngineGroupsSimilarNames(t *testing.T) {
	d := NewDict()
	a := d.Add("Abbey Road")
	d.Add("Abby Road")
	d.Add("Kid A")
	e := NewEngine(d)
	e.Run(0.6, similarity.Score)

	got := binMembers(e, d, a)
	want := []string{"Abbey Road", "Abby Road"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("bin = %v, want %v", got, want)
	}

	kidA := d.indexes["Kid A"]
	if _, ok := e.BinOf(kidA); ok {
		t.Fatal("unrelated singleton must stay unbinned")
	}
}

func TestEngineDuplicateNamePreBinned(t *testing.T) {
	d := NewDict()
	id := d.Add("Homework")
	d.Add("Homework")
	e := NewEngine(d)
	e.Run(0.9, similarity.Score)

	if _, ok := e.BinOf(id); !ok {
		t.Fatal("a name seen twice must form a bin even without a partner")
	}
}

func TestEngineSingleOccurrenceUnbinned(t *testing.T) {
	e := runEngine(t, []string{"Homework"}, 0.5)
	if _, ok := e.BinOf(0); ok {
		t.Fatal("a once-seen name with no partner must stay unbinned")
	}
}

func TestEngineDeterministic(t *testing.T) {
	words := []string{"Alpha", "Alphas", "Alphaz", "Beta", "Betas", "Gamma"}
	first := runEngine(t, words, 0.5)
	for n := 0; n < 10; n++ {
		again := runEngine(t, words, 0.5)
		for id := 0; id < len(words); id++ {
			a, okA := first.BinOf(id)
			b, okB := again.BinOf(id)
			if okA != okB || (okA && a != b) {
				t.Fatalf("run differs for id %d: (%d,%v) vs (%d,%v)", id, a, okA, b, okB)
			}
		}
	}
}

func TestEngineTitlePrefersMostFrequent(t *testing.T) {
	d := NewDict()
	a := d.Add("Abby Road")
	d.Add("Abbey Road")
	d.Add("Abbey Road")
	e := NewEngine(d)
	e.Run(0.5, similarity.Score)

	bin, ok := e.BinOf(a)
	if !ok {
		t.Fatal("expected a bin")
	}
	if got := e.Title(bin); got != "Abbey Road" {
		t.Fatalf("Title = %q, want the most frequent spelling", got)
	}
}

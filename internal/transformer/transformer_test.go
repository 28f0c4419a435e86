package transformer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"reportcache/pkg/records"
)

/*
addFieldTransformer mutates each record in place by setting key -> value.
Used to verify mutation flows through Chain.
*/
type addFieldTransformer struct {
	key string
	val any
}

func (t addFieldTransformer) Apply(in []records.Record) []records.Record {
	for i := range in {
		in[i][t.key] = t.val
	}
	return in
}

/*
dropFirstTransformer reslices the batch; it verifies that Chain passes the
returned slice, not the original, to the next step.
*/
type dropFirstTransformer struct{}

func (dropFirstTransformer) Apply(in []records.Record) []records.Record {
	if len(in) == 0 {
		return in
	}
	return in[1:]
}

func TestChain_AppliesInOrder(t *testing.T) {
	in := []records.Record{{"n": 1}, {"n": 2}}
	c := Chain{
		addFieldTransformer{key: "a", val: "x"},
		dropFirstTransformer{},
		addFieldTransformer{key: "a", val: "y"},
	}

	got := c.Apply(in)
	want := []records.Record{{"n": 2, "a": "y"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Chain.Apply mismatch (-want +got):\n%s", diff)
	}
	if in[0]["a"] != "x" {
		t.Fatalf("first record should carry the first step's mutation, got %v", in[0]["a"])
	}
}

func TestChain_Empty(t *testing.T) {
	in := []records.Record{{"n": 1}}
	if got := (Chain{}).Apply(in); len(got) != 1 {
		t.Fatalf("empty chain changed the batch: %v", got)
	}
}

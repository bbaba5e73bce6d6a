package core

import "testing"

type nopSim struct{}

func (nopSim) Name() string   { return "nop" }
func (nopSim) Size() Size     { return Size{W: 1, H: 1} }
func (nopSim) Reset(int64)    {}
func (nopSim) Step()          {}
func (nopSim) Cells() []uint8 { return []uint8{0} }

func TestRegisterIgnoresInvalidEntries(t *testing.T) {
	before := len(Sims())
	Register("", func(map[string]string) (Sim, error) { return nopSim{}, nil })
	Register("nil-factory", nil)
	if len(Sims()) != before {
		t.Fatal("invalid registrations must be ignored")
	}

	Register("nop-test", func(map[string]string) (Sim, error) { return nopSim{}, nil })
	f, ok := Sims()["nop-test"]
	if !ok {
		t.Fatal("expected registered factory to be listed")
	}
	sim, err := f(nil)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if got := sim.Name(); got != "nop" {
		t.Fatalf("factory produced %q, want nop", got)
	}
	delete(sims, "nop-test")
}

func TestParameterSnapshotLookup(t *testing.T) {
	snap := ParameterSnapshot{Groups: []ParameterGroup{
		{Name: "A", Params: []Parameter{{Key: "x", Value: "1"}}},
		{Name: "B", Params: []Parameter{{Key: "y", Value: "2"}}},
	}}
	p, ok := snap.Lookup("y")
	if !ok || p.Value != "2" {
		t.Fatalf("Lookup(y) = %+v, %v", p, ok)
	}
	if _, ok := snap.Lookup("z"); ok {
		t.Fatal("Lookup(z) should miss")
	}
}

func TestParameterControlClamp(t *testing.T) {
	c := ParameterControl{Min: 0, Max: 1, HasMin: true, HasMax: true}
	if got := c.Clamp(-1); got != 0 {
		t.Fatalf("Clamp(-1) = %v", got)
	}
	if got := c.Clamp(2); got != 1 {
		t.Fatalf("Clamp(2) = %v", got)
	}
	open := ParameterControl{}
	if got := open.Clamp(42); got != 42 {
		t.Fatalf("unbounded Clamp(42) = %v", got)
	}
}

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(7)
	b := NewRNG(7)
	for i := 0; i < 16; i++ {
		if a.IntN(100) != b.IntN(100) {
			t.Fatal("same seed must yield same sequence")
		}
	}
	if got := a.IntN(0); got != 0 {
		t.Fatalf("IntN(0) = %d, want 0", got)
	}
	if f := a.Float64(); f < 0 || f >= 1 {
		t.Fatalf("Float64 out of range: %v", f)
	}
}

package conformance

import (
	"testing"

	"github.com/oisee/gblr35902/pkg/cpu"
)

func TestRunPasses(t *testing.T) {
	if err := Run(); err != nil {
		t.Fatal(err)
	}
}

func TestRunCatchesRegressions(t *testing.T) {
	orig := Scenarios
	defer func() { Scenarios = orig }()

	broken := make([]Scenario, len(orig))
	copy(broken, orig)
	broken[0].Check = func(p *cpu.Processor, cycles int) error {
		return expectInt("forced failure", 1, 2)
	}
	Scenarios = broken

	if err := Run(); err == nil {
		t.Fatal("expected Run to surface the broken scenario's failure")
	}
}

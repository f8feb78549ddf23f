package di

import (
	"testing"

	"SignalGate/internal/services/providers"
	"SignalGate/pkg/config"
)

func stageOrder(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	orch := ProvideOrchestrator(cfg, ProvideCooldowns(cfg), &providers.Set{}, nil, nil)
	snap := orch.Stats().Snapshot()
	names := make([]string, 0, len(snap.Stages))
	for _, st := range snap.Stages {
		names = append(names, st.Stage)
	}
	return names
}

func TestOrchestratorStageOrderWithSniper(t *testing.T) {
	cfg := &config.Config{}
	cfg.Filters.Sniper.Enabled = true

	got := stageOrder(t, cfg)
	want := []string{"instant", "heuristic", "sniper", "micro"}
	if len(got) != len(want) {
		t.Fatalf("stage count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage order = %v, want %v", got, want)
		}
	}
}

func TestOrchestratorStageOrderWithoutSniper(t *testing.T) {
	got := stageOrder(t, &config.Config{})
	want := []string{"instant", "heuristic", "micro"}
	if len(got) != len(want) {
		t.Fatalf("stage count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage order = %v, want %v", got, want)
		}
	}
}

package filter

import (
	"testing"

	"leveltracker.gg/internal/rules"
)

func TestIncludePartitionActorNoRules(t *testing.T) {
	if !IncludePartitionActor("/Game/Town/Actor1.Actor1", nil, nil) {
		t.Fatalf("no rules must include")
	}
	if IncludePartitionActor("broken", nil, nil) {
		t.Fatalf("invalid actor id must exclude")
	}
}

func TestIncludePartitionActorRegionGate(t *testing.T) {
	r := rules.Default()
	r.RegionRules = []string{"Harbor"}

	if !IncludePartitionActor("/Game/Town/Actor1.Actor1", []string{"Harbor"}, &r) {
		t.Fatalf("region name match must include")
	}
	if !IncludePartitionActor("/Game/Harbor/Actor2.Actor2", nil, &r) {
		t.Fatalf("package substring match must include")
	}
	if IncludePartitionActor("/Game/Town/Actor3.Actor3", []string{"Town"}, &r) {
		t.Fatalf("unmatched region must exclude in inclusion mode")
	}
}

func TestIncludePartitionActorRegionExclusionShortCircuits(t *testing.T) {
	r := rules.Default()
	r.UseExclusionMode = true
	r.RegionRules = []string{"Harbor"}
	// Cell rule would re-include the actor if it were evaluated; the
	// region exclusion must short-circuit first.
	r.CellRules = []string{"Actor2"}

	if IncludePartitionActor("/Game/Harbor/Actor2.Actor2", nil, &r) {
		t.Fatalf("region-excluded actor must not reach cell rules")
	}
	// Outside the excluded region the cell exclusion still applies.
	if IncludePartitionActor("/Game/Town/Cell_1_Actor2.Actor2", nil, &r) {
		t.Fatalf("cell-excluded actor must be dropped")
	}
	// Outside both rule scopes the actor survives exclusion mode.
	if !IncludePartitionActor("/Game/Town/Cell_1_Other.Other", nil, &r) {
		t.Fatalf("actor matching no rule must survive exclusion mode")
	}
}

func TestIncludePartitionActorCellGate(t *testing.T) {
	r := rules.Default()
	r.CellRules = []string{"Cell_0_0"}

	if !IncludePartitionActor("/Game/Town/Cell_0_0/Actor.Actor", nil, &r) {
		t.Fatalf("cell substring match must include")
	}
	if IncludePartitionActor("/Game/Town/Cell_9_9/Actor.Actor", nil, &r) {
		t.Fatalf("unmatched cell must exclude in inclusion mode")
	}
}

func TestIncludePartitionActorRegionNameCaseInsensitive(t *testing.T) {
	r := rules.Default()
	r.RegionRules = []string{"harbor"}
	if !IncludePartitionActor("/Game/Town/Actor1.Actor1", []string{"Harbor"}, &r) {
		t.Fatalf("region name matching is case-insensitive")
	}
}

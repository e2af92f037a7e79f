package domain

import (
	"testing"
	"time"
)

func fixedTime() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestApplySnapshotComputesBests(t *testing.T) {
	yes := []PriceLevel{{Price: 73, Size: 26, Side: SideYes}, {Price: 50, Size: 10, Side: SideYes}}
	no := []PriceLevel{{Price: 98, Size: 8285, Side: SideNo}, {Price: 97, Size: 28659, Side: SideNo}}

	snap, changed := ApplySnapshot(nil, "M", yes, no, 5, fixedTime())
	if !changed {
		t.Fatal("expected changed=true for first snapshot")
	}
	if snap.BestYesBid == nil || *snap.BestYesBid != 73 {
		t.Fatalf("expected best yes bid 73, got %v", snap.BestYesBid)
	}
	if snap.BestNoBid == nil || *snap.BestNoBid != 98 {
		t.Fatalf("expected best no bid 98, got %v", snap.BestNoBid)
	}
	if *snap.LastSeq != 5 {
		t.Fatalf("expected last seq 5, got %d", *snap.LastSeq)
	}
}

func TestApplySnapshotDropsZeroSizeLevels(t *testing.T) {
	yes := []PriceLevel{{Price: 73, Size: 0, Side: SideYes}}
	snap, _ := ApplySnapshot(nil, "M", yes, nil, 1, fixedTime())
	if _, ok := snap.YesLevels[73]; ok {
		t.Fatal("expected zero-size level to be dropped from snapshot")
	}
}

func TestApplyDeltaRejectsSequenceGap(t *testing.T) {
	snap, _ := ApplySnapshot(nil, "M", []PriceLevel{{Price: 1, Size: 95010, Side: SideYes}}, []PriceLevel{{Price: 98, Size: 8285, Side: SideNo}}, 5, fixedTime())

	_, _, err := ApplyDelta(snap, SideYes, 73, 26, 7, fixedTime())
	if err == nil {
		t.Fatal("expected sequence gap error")
	}
}

func TestApplyDeltaAddsNewBestLevel(t *testing.T) {
	snap, _ := ApplySnapshot(nil, "M", []PriceLevel{{Price: 1, Size: 95010, Side: SideYes}}, []PriceLevel{{Price: 98, Size: 8285, Side: SideNo}, {Price: 97, Size: 28659, Side: SideNo}}, 5, fixedTime())

	next, changed, err := ApplyDelta(snap, SideYes, 73, 26, 6, fixedTime())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected best price change")
	}
	if next.BestYesBid == nil || *next.BestYesBid != 73 {
		t.Fatalf("expected best yes bid 73, got %v", next.BestYesBid)
	}
	if next.BestNoBid == nil || *next.BestNoBid != 98 {
		t.Fatalf("expected best no bid still 98, got %v", next.BestNoBid)
	}
}

func TestApplyDeltaRemovesLevelWhenSizeHitsZero(t *testing.T) {
	snap, _ := ApplySnapshot(nil, "M", []PriceLevel{{Price: 73, Size: 26, Side: SideYes}}, nil, 1, fixedTime())

	next, _, err := ApplyDelta(snap, SideYes, 73, -26, 2, fixedTime())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := next.YesLevels[73]; ok {
		t.Fatal("expected level removed once size reaches zero")
	}
	if next.BestYesBid != nil {
		t.Fatalf("expected no best yes bid, got %v", next.BestYesBid)
	}
}

func TestApplyDeltaLeavesPreviousSnapshotUntouched(t *testing.T) {
	snap, _ := ApplySnapshot(nil, "M", []PriceLevel{{Price: 73, Size: 26, Side: SideYes}}, nil, 1, fixedTime())
	_, _, err := ApplyDelta(snap, SideYes, 73, 10, 2, fixedTime())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.YesLevels[73].Size != 26 {
		t.Fatalf("expected original snapshot untouched, got size %d", snap.YesLevels[73].Size)
	}
}

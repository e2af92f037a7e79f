package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDirectionString(t *testing.T) {
	if DirectionKToP.String() == "unknown" {
		t.Error("DirectionKToP should have a human-readable description")
	}
	if DirectionPToK.String() == "unknown" {
		t.Error("DirectionPToK should have a human-readable description")
	}
	if Direction("bogus").String() != "unknown" {
		t.Error("unrecognized Direction should describe as unknown")
	}
}

func TestOpportunityFields(t *testing.T) {
	o := Opportunity{
		PairID:     "pair-1",
		Timestamp:  time.Unix(0, 0),
		Spread:     decimal.NewFromFloat(0.08),
		Direction:  DirectionKToP,
		Side:       SideYes,
		KPrice:     decimal.NewFromFloat(0.40),
		PPrice:     decimal.NewFromFloat(0.52),
		KMarketKey: "KXNBA.26JAN01",
		PAssetID:   "asset-1",
		ExecutionSize: decimal.NewFromInt(25),
		ExecutionInfo: ExecutionInfo{
			KSize:          decimal.NewFromInt(50),
			PSize:          decimal.NewFromInt(25),
			Min:            decimal.NewFromInt(25),
			LimitingFactor: "p",
		},
	}

	if o.Spread.LessThan(decimal.Zero) || o.Spread.GreaterThan(decimal.NewFromInt(1)) {
		t.Errorf("Spread %s out of [0,1] range", o.Spread)
	}
	if o.ExecutionInfo.LimitingFactor != "p" {
		t.Errorf("LimitingFactor = %q, want %q", o.ExecutionInfo.LimitingFactor, "p")
	}
	if !o.ExecutionInfo.Min.Equal(decimal.Min(o.ExecutionInfo.KSize, o.ExecutionInfo.PSize)) {
		t.Error("Min should be the smaller of KSize and PSize")
	}
}

package core

import (
	"testing"

	"marketpulse/src/models"
)

func snap(symbol string, changePercent float64) models.AlertSnapshot {
	return models.AlertSnapshot{Symbol: symbol, ChangePercent: changePercent}
}

func TestUpsertIfSignificantFirstWriteIsNew(t *testing.T) {
	ts := newThresholdSet()

	var gotSnapshot models.AlertSnapshot
	var gotKind string
	wrote := ts.upsertIfSignificant(snap("AAPL", 10), 0.1, func(s models.AlertSnapshot, kind string) {
		gotSnapshot, gotKind = s, kind
	})
	if !wrote || gotKind != "enter" {
		t.Fatalf("expected wrote=true, kind=enter on first insert, got wrote=%v kind=%v", wrote, gotKind)
	}
	if gotSnapshot.ChangePercent != 10 {
		t.Fatalf("expected dispatched change_percent 10, got %v", gotSnapshot.ChangePercent)
	}
}

func TestUpsertIfSignificantWithinHysteresisIsSuppressed(t *testing.T) {
	ts := newThresholdSet()
	ts.upsertIfSignificant(snap("AAPL", 10), 0.1, nil)

	dispatched := false
	wrote := ts.upsertIfSignificant(snap("AAPL", 10.05), 0.1, func(models.AlertSnapshot, string) {
		dispatched = true
	})
	if wrote {
		t.Fatal("expected change within hysteresis delta to be suppressed")
	}
	if dispatched {
		t.Fatal("onDispatch must not be invoked on a suppressed update")
	}
}

func TestUpsertIfSignificantBeyondHysteresisIsUpdate(t *testing.T) {
	ts := newThresholdSet()
	ts.upsertIfSignificant(snap("AAPL", 10), 0.1, nil)

	var gotSnapshot models.AlertSnapshot
	var gotKind string
	wrote := ts.upsertIfSignificant(snap("AAPL", 10.5), 0.1, func(s models.AlertSnapshot, kind string) {
		gotSnapshot, gotKind = s, kind
	})
	if !wrote {
		t.Fatal("expected a change beyond the hysteresis delta to write")
	}
	if gotKind != "update" {
		t.Fatalf("expected kind=update for an existing symbol's change, got %v", gotKind)
	}
	if gotSnapshot.ChangePercent != 10.5 {
		t.Fatalf("expected dispatched change_percent 10.5, got %v", gotSnapshot.ChangePercent)
	}
}

func TestRemoveReturnsLastKnownSnapshot(t *testing.T) {
	ts := newThresholdSet()
	ts.upsertIfSignificant(snap("AAPL", 10), 0.1, nil)

	var gotSnapshot models.AlertSnapshot
	var gotKind string
	removed := ts.remove("AAPL", func(s models.AlertSnapshot, kind string) {
		gotSnapshot, gotKind = s, kind
	})
	if !removed {
		t.Fatal("expected remove to report present")
	}
	if gotKind != "exit" || gotSnapshot.ChangePercent != 10 {
		t.Fatalf("expected dispatch of exit with change_percent 10, got kind=%v snapshot=%v", gotKind, gotSnapshot)
	}

	if ts.remove("AAPL", nil) {
		t.Fatal("expected second remove of the same symbol to report absent")
	}
}

func TestRemoveManyReturnsOnlyPresentSnapshots(t *testing.T) {
	ts := newThresholdSet()
	ts.upsertIfSignificant(snap("AAPL", 10), 0.1, nil)

	removed := ts.removeMany([]string{"AAPL", "MSFT"})
	if len(removed) != 1 {
		t.Fatalf("expected exactly one removed snapshot (MSFT was never present), got %d", len(removed))
	}
	if removed[0].Symbol != "AAPL" {
		t.Fatalf("expected removed snapshot for AAPL, got %s", removed[0].Symbol)
	}
	if ts.len() != 0 {
		t.Fatalf("expected threshold set empty after removeMany, got len %d", ts.len())
	}
}

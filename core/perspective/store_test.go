package perspective

import (
	"testing"
	"time"
)

func TestApplyPatchIsIdempotentAndCaseInsensitive(t *testing.T) {
	store := NewStore()

	first := store.ApplyPatch(Patch{Add: Lists{Goals: []string{"Find a home", "  find   a HOME "}}}, SourceTool)
	if got := len(first.Added.Goals); got != 1 {
		t.Fatalf("expected 1 goal added, got %d", got)
	}

	second := store.ApplyPatch(Patch{Add: Lists{Goals: []string{"FIND A HOME"}}}, SourceExtraction)
	if !second.IsEmpty() {
		t.Fatalf("expected second apply to be a no-op, got %+v", second)
	}

	entries := store.Entries(BucketGoals)
	if len(entries) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(entries))
	}
	if entries[0].Text != "Find a home" {
		t.Fatalf("expected original casing to be kept, got %q", entries[0].Text)
	}
	if entries[0].Source != SourceTool {
		t.Fatalf("expected source %q, got %q", SourceTool, entries[0].Source)
	}
}

func TestApplyPatchRemovesBeforeAdding(t *testing.T) {
	store := NewStore()
	store.ApplyPatch(Patch{Add: Lists{Facts: []string{"budget is tight"}}}, SourceTool)

	applied := store.ApplyPatch(Patch{
		Add:    Lists{Facts: []string{"Budget is tight"}},
		Remove: Lists{Facts: []string{"budget is tight"}},
	}, SourceExtraction)

	if len(applied.Removed.Facts) != 1 || len(applied.Added.Facts) != 1 {
		t.Fatalf("expected one removal and one addition, got %+v", applied)
	}
	entries := store.Entries(BucketFacts)
	if len(entries) != 1 || entries[0].Text != "Budget is tight" {
		t.Fatalf("expected re-added fact, got %+v", entries)
	}
	if entries[0].Source != SourceExtraction {
		t.Fatalf("expected source to follow the latest add, got %q", entries[0].Source)
	}
}

func TestApplyPatchIgnoresRemovalOfAbsentEntry(t *testing.T) {
	store := NewStore()
	applied := store.ApplyPatch(Patch{Remove: Lists{Risks: []string{"flooding"}}}, SourceTool)
	if !applied.IsEmpty() {
		t.Fatalf("expected no-op, got %+v", applied)
	}
}

func TestApplyPatchNoopWhileGateOpen(t *testing.T) {
	store := NewStore()
	store.SetGateOpen(true)

	applied := store.ApplyPatch(Patch{Add: Lists{Options: []string{"Brandon"}}}, SourceTool)
	if !applied.IsEmpty() {
		t.Fatalf("expected gate to block patch, got %+v", applied)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", store.Len())
	}

	store.SetGateOpen(false)
	store.ApplyPatch(Patch{Add: Lists{Options: []string{"Brandon"}}}, SourceTool)
	if !store.Contains(BucketOptions, "brandon") {
		t.Fatalf("expected option after gate closed")
	}
}

func TestEntryIDIsStable(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore(WithClock(func() time.Time { return at }))

	store.ApplyPatch(Patch{Add: Lists{Questions: []string{"Which school?"}}}, SourceTool)
	id := store.Entries(BucketQuestions)[0].ID
	store.ApplyPatch(Patch{Remove: Lists{Questions: []string{"which school?"}}}, SourceTool)
	store.ApplyPatch(Patch{Add: Lists{Questions: []string{"WHICH SCHOOL?"}}}, SourceTool)

	entry := store.Entries(BucketQuestions)[0]
	if entry.ID != id {
		t.Fatalf("expected stable id %q, got %q", id, entry.ID)
	}
	if !entry.AddedAt.Equal(at) {
		t.Fatalf("expected AddedAt %v, got %v", at, entry.AddedAt)
	}
	if EntryID(BucketQuestions, "which school?") == EntryID(BucketRisks, "which school?") {
		t.Fatalf("expected ids to differ across buckets")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	store := NewStore()
	store.ApplyPatch(Patch{Add: Lists{Goals: []string{"save money"}}}, SourceTool)

	entries := store.Entries(BucketGoals)
	entries[0].Text = "mutated"

	if store.Entries(BucketGoals)[0].Text != "save money" {
		t.Fatalf("expected store to be unaffected by caller mutation")
	}
}

func TestConflicts(t *testing.T) {
	store := NewStore()
	store.ApplyPatch(Patch{Add: Lists{Facts: []string{
		"the budget is tight",
		"the budget is not tight",
		"we have two kids",
	}}}, SourceTool)

	conflicts := store.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Bucket != BucketFacts {
		t.Fatalf("expected conflict in facts, got %q", conflicts[0].Bucket)
	}
}

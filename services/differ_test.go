package services

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"apartment-watcher/models"
)

func ids(listings []models.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func withIDs(ids ...string) []models.Listing {
	out := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Listing{ID: id, URL: "http://x/" + id, Title: "apt " + id})
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		current  []models.Listing
		previous []models.Listing
		want     []string
	}{
		{"both empty", nil, nil, []string{}},
		{"empty current", nil, withIDs("1", "2"), []string{}},
		{"empty previous", withIDs("3", "1", "2"), nil, []string{"3", "1", "2"}},
		{"one new", withIDs("1", "2"), withIDs("1"), []string{"2"}},
		{"nothing new", withIDs("2", "1"), withIDs("1", "2", "0"), []string{}},
		{"keeps current order", withIDs("9", "1", "7", "2"), withIDs("1", "2"), []string{"9", "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Diff(tt.current, tt.previous))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestDiffRandomised(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		var current, previous []models.Listing
		nCurrent, nPrevious := rng.Intn(15), rng.Intn(15)
		for i := 0; i < nCurrent; i++ {
			current = append(current, withIDs(fmt.Sprint(rng.Intn(20)))...)
		}
		for i := 0; i < nPrevious; i++ {
			previous = append(previous, withIDs(fmt.Sprint(rng.Intn(20)))...)
		}

		prevIDs := map[string]bool{}
		for _, l := range previous {
			prevIDs[l.ID] = true
		}
		want := []string{}
		for _, l := range current {
			if !prevIDs[l.ID] {
				want = append(want, l.ID)
			}
		}

		if got := ids(Diff(current, previous)); !reflect.DeepEqual(got, want) {
			t.Fatalf("round %d: Diff(%v, %v) = %v; want %v", round, ids(current), ids(previous), got, want)
		}
	}
}

func TestMerge(t *testing.T) {
	merged, trimmed := Merge(withIDs("2"), withIDs("1"), 0)
	if got := ids(merged); !reflect.DeepEqual(got, []string{"2", "1"}) {
		t.Errorf("Merge = %v; want [2 1]", got)
	}
	if trimmed != 0 {
		t.Errorf("trimmed = %d; want 0", trimmed)
	}
}

func TestMergeRetention(t *testing.T) {
	merged, trimmed := Merge(withIDs("5", "4"), withIDs("3", "2", "1"), 3)
	if got := ids(merged); !reflect.DeepEqual(got, []string{"5", "4", "3"}) {
		t.Errorf("Merge = %v; want newest three", got)
	}
	if trimmed != 2 {
		t.Errorf("trimmed = %d; want 2", trimmed)
	}
}

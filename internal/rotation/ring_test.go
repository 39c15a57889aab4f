package rotation

import (
	"testing"

	"github.com/rgarton/homesync/internal/model"
)

func members(names ...string) []model.Member {
	out := make([]model.Member, len(names))
	for i, n := range names {
		out[i] = model.Member{ID: int64(i + 1), Name: n}
	}
	return out
}

func assigned(id int64, title, to string) model.Chore {
	return model.Chore{ID: id, Title: title, AssignedTo: &to}
}

func TestPlanWalksRing(t *testing.T) {
	ring := members("Alice", "Bob", "Carol")
	chores := []model.Chore{
		assigned(1, "Dishes", "Alice"),
		assigned(2, "Vacuum", "Bob"),
		assigned(3, "Trash", "Carol"),
	}

	changes := Plan(chores, ring)
	if len(changes) != 3 {
		t.Fatalf("changes = %d, want 3", len(changes))
	}

	want := map[int64]string{1: "Bob", 2: "Carol", 3: "Alice"}
	for _, ch := range changes {
		if ch.New != want[ch.ChoreID] {
			t.Errorf("chore %d -> %q, want %q", ch.ChoreID, ch.New, want[ch.ChoreID])
		}
	}
}

func TestPlanWrapsAtEndOfRing(t *testing.T) {
	ring := members("Alice", "Bob")
	changes := Plan([]model.Chore{assigned(1, "Dishes", "Bob")}, ring)
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	if changes[0].New != "Alice" {
		t.Errorf("new = %q, want Alice", changes[0].New)
	}
}

func TestPlanFallsBackForDepartedAssignee(t *testing.T) {
	ring := members("Alice", "Bob")
	changes := Plan([]model.Chore{assigned(1, "Dishes", "Departed")}, ring)
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	if changes[0].Previous != "Departed" {
		t.Errorf("previous = %q, want Departed", changes[0].Previous)
	}
	if changes[0].New != "Alice" {
		t.Errorf("new = %q, want Alice (first member)", changes[0].New)
	}
}

func TestPlanSkipsUnassignedChores(t *testing.T) {
	ring := members("Alice", "Bob")
	empty := ""
	chores := []model.Chore{
		{ID: 1, Title: "Unassigned"},
		{ID: 2, Title: "Blank", AssignedTo: &empty},
		assigned(3, "Dishes", "Alice"),
	}

	changes := Plan(chores, ring)
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	if changes[0].ChoreID != 3 {
		t.Errorf("chore_id = %d, want 3", changes[0].ChoreID)
	}
}

func TestPlanEmptyRing(t *testing.T) {
	changes := Plan([]model.Chore{assigned(1, "Dishes", "Alice")}, nil)
	if changes != nil {
		t.Errorf("changes = %v, want nil", changes)
	}
}

func TestPlanSingleMemberRing(t *testing.T) {
	ring := members("Alice")
	changes := Plan([]model.Chore{assigned(1, "Dishes", "Alice")}, ring)
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	if changes[0].New != "Alice" {
		t.Errorf("new = %q, want Alice (ring of one)", changes[0].New)
	}
}

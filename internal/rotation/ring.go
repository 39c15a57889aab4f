// Package rotation reassigns chores around the household's member ring
// on a weekly, biweekly, or monthly cadence.
package rotation

import "github.com/rgarton/homesync/internal/model"

// Plan computes the next assignment for every assigned chore by walking
// the member ring: each chore moves to the successor of its current
// assignee, wrapping at the end. A chore whose assignee is no longer in
// the ring falls back to the first member. Unassigned chores are left
// alone, and an empty ring plans nothing.
func Plan(chores []model.Chore, ring []model.Member) []model.Reassignment {
	if len(ring) == 0 {
		return nil
	}
	index := make(map[string]int, len(ring))
	for i, m := range ring {
		index[m.Name] = i
	}

	var changes []model.Reassignment
	for _, c := range chores {
		if c.AssignedTo == nil || *c.AssignedTo == "" {
			continue
		}
		next := ring[0].Name
		if i, ok := index[*c.AssignedTo]; ok {
			next = ring[(i+1)%len(ring)].Name
		}
		changes = append(changes, model.Reassignment{
			ChoreID:  c.ID,
			Previous: *c.AssignedTo,
			New:      next,
		})
	}
	return changes
}

package activity

import "sort"

// reconcileOrder restores the invariant that an activity's device order is
// exactly a permutation of its device-state keys.
//
// Identifiers present in the order but absent from the states mapping are
// dropped. Identifiers present in the mapping but absent from the order are
// appended at the end in lexicographic order, giving stable, deterministic
// recovery of a corrupted or partial order. Duplicate entries keep their
// first occurrence.
//
// The function is idempotent: reconciling an already-reconciled order
// returns an equal slice.
func reconcileOrder(states map[string]DeviceTarget, order []string) []string {
	result := make([]string, 0, len(states))
	seen := make(map[string]bool, len(states))

	for _, id := range order {
		if _, ok := states[id]; !ok {
			continue
		}
		if seen[id] {
			continue
		}
		result = append(result, id)
		seen[id] = true
	}

	var missing []string
	for id := range states {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)

	return append(result, missing...)
}

// Reconcile rewrites the activity's DeviceOrder so it is exactly a
// permutation of the DeviceStates keys. It must run before every read or
// write that depends on order; GetActivity does this automatically.
func (a *Activity) Reconcile() {
	a.DeviceOrder = reconcileOrder(a.DeviceStates, a.DeviceOrder)
}

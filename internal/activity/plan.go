package activity

// TransitionPlan partitions the devices involved in an activity switch.
//
// The three slices are pairwise disjoint and together cover the union of
// the current and new activities' device sets:
//
//   - PowerOff: devices of the current activity not needed by the new one,
//     turned off before any new-activity device is touched. Ordered by the
//     current activity's reconciled device order.
//   - KeepOn: devices shared by both activities; they receive a
//     settings-only update without a power cycle ("smart switch").
//   - PowerOnAndConfigure: devices only the new activity needs; full
//     power-on sequence with post-power delay.
//
// KeepOn and PowerOnAndConfigure follow the new activity's reconciled
// device order.
type TransitionPlan struct {
	PowerOff            []string
	KeepOn              []string
	PowerOnAndConfigure []string
}

// Plan computes the transition plan from the current activity (nil if the
// room is idle) to the new activity.
//
// This is a pure function: no side effects, no gateway calls. Both
// activities are expected to be reconciled; GetActivity guarantees this.
func Plan(current, next *Activity) TransitionPlan {
	if current == nil {
		return TransitionPlan{
			PowerOnAndConfigure: append([]string(nil), next.DeviceOrder...),
		}
	}

	var plan TransitionPlan

	for _, id := range current.DeviceOrder {
		if _, shared := next.DeviceStates[id]; !shared {
			plan.PowerOff = append(plan.PowerOff, id)
		}
	}

	for _, id := range next.DeviceOrder {
		if _, shared := current.DeviceStates[id]; shared {
			plan.KeepOn = append(plan.KeepOn, id)
		} else {
			plan.PowerOnAndConfigure = append(plan.PowerOnAndConfigure, id)
		}
	}

	return plan
}

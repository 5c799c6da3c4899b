// Package activity provides the activity orchestration engine for AV
// Scenes Core.
//
// An activity is a named, ordered target configuration for a set of
// devices — one "scene" a room can be in (movie, music, gaming). The
// engine activates one activity at a time per room by driving devices
// through the command gateway, computing the minimal set of device
// transitions when switching between activities.
//
// Architecture:
//
//	┌─────────────────────────────────────────────────────────┐
//	│                  Engine (engine.go)                      │
//	│  Orchestrates per-room activity transitions              │
//	│  ┌──────────────┐    ┌──────────────┐                  │
//	│  │   Registry   │───▶│  Repository  │                  │
//	│  │(registry.go) │    │(repository.go)│                 │
//	│  └──────────────┘    └──────────────┘                  │
//	│        │                                                │
//	│        ▼                                                │
//	│  ┌──────────────────────────────────────────────┐      │
//	│  │  Transition Pipeline (per-room lock held)     │      │
//	│  │  1. Load new activity (cached, reconciled)    │      │
//	│  │  2. Diff against current activity (plan.go)   │      │
//	│  │  3. Power off devices leaving service         │      │
//	│  │  4. State → starting                          │      │
//	│  │  5. Sequence devices in activity order:       │      │
//	│  │     keep-on → settings only                   │      │
//	│  │     new → power on, delay, settings           │      │
//	│  │  6. State → active; record transition         │      │
//	│  └──────────────────────────────────────────────┘      │
//	└─────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Room / Activity: The configuration model (room → activities →
//     ordered device targets)
//   - DeviceTarget: Per-device target configuration, category-specific
//   - TransitionPlan: The {powerOff, keepOn, powerOnAndConfigure}
//     partition computed by Plan
//   - Engine: Orchestrator driving the Gateway
//   - Registry: Thread-safe in-memory cache wrapping Repository
//
// # Concurrency
//
// One transition at a time per room: the engine holds a per-room mutex
// for the full plan + execute duration, so concurrent start/stop requests
// for the same room queue. Different rooms transition independently.
// Status reads never take the transition lock and may observe transient
// starting/stopping states.
//
// # Error Handling
//
// Device commands are best-effort: a failed command is logged and the
// sequence continues. Unknown rooms or activities are rejected before any
// state change. A desynchronised device order is repaired by
// reconciliation, never surfaced as an error.
//
// # Usage
//
//	repo := activity.NewSQLiteRepository(db)
//	registry := activity.NewRegistry(repo)
//	registry.SetLogger(log)
//
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	engine := activity.NewEngine(registry, gateway, repo, log)
//	err := engine.StartActivity(ctx, "living_room", "movie")
package activity

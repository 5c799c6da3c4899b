// Package database provides the SQLite persistence layer for AV Scenes Core.
//
// It wraps database/sql with:
//   - Connection lifecycle management (WAL mode, busy timeout, single writer)
//   - Embedded schema migrations (see the migrations package)
//   - Health checks for startup verification
//
// The durable artefacts are the room/activity configuration edited by the
// setup tooling and the activity transition log; the orchestration engine's
// runtime state is deliberately NOT persisted and is rebuilt to idle on
// process restart.
package database

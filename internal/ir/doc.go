// Package ir provides the timeline representation shared by the engine,
// the marble parser and the harness.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Frames are int64 virtual timestamps, never wall-clock time
//   - Notifications and test messages are immutable values
//   - Infinity (math.MaxInt64) marks an unsubscribe that never happened
//   - Canonical JSON is the only serialization used for snapshots
package ir

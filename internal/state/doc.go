// Package state provides the thread-safe account snapshot shared between the
// background game-info poller and the UI.
//
// The Store follows a producer-consumer pattern: the poller writes with
// Update, the UI reads with Snapshot. Updates are atomic under an RWMutex,
// and a failed update keeps the previous data while recording the error, so
// the header never tears down a balance it already showed just because one
// poll failed. ConsecutiveFailures drives the offline indicator.
package state

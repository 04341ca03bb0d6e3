// Package config reads the library's runtime feature flags from the
// environment. Concurrency is not read here — it is a Go build tag
// (internal/engine), not a runtime switch, since it changes which code is
// compiled in. Each function below reads the environment afresh on every
// call; none of the flags depends on secret data, preserving the
// public-size principle.
package config

import "os"

// EfficientMode reports whether EFFICIENT_MODE=true is set. Nothing in this
// module reads it: IndexEquiJoin drops each bucket's sliced and joined
// relations once they are copied into the output, whichever way it is set,
// and there is no materialized path that keeps them.
func EfficientMode() bool {
	return os.Getenv("EFFICIENT_MODE") == "true"
}

// DebugLog reports whether DEBUG_LOG=true is set: rebuilt-index ranges and
// other plan-time diagnostics are logged.
func DebugLog() bool {
	return os.Getenv("DEBUG_LOG") == "true"
}

// FullBench reports whether FULL_BENCH=true is set. Nothing in this module
// reads it; no driver here has a cached measurement shortcut to disable.
func FullBench() bool {
	return os.Getenv("FULL_BENCH") == "true"
}

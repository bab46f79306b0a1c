// Package workers sizes worker pools from the CPU budget of the process.
//
// The player launcher pool uses ForBlocking (overridable with
// PLAYER_WORKERS) and the thumbnail resizer uses ForCPU.
package workers

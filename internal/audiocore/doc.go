// Package audiocore implements the real-time audio acquisition pipeline:
// device enumeration and selection, the capture stream, the bounded
// drop-oldest capture queue, and the fan-out of captured blocks to
// registered analysis consumers.
//
// Architecture overview:
//
//	Driver callback -> CaptureQueue -> processing goroutine -> Consumers
//
// The driver callback is the real-time boundary: it only copies the
// incoming block and pushes it to the queue. All consumer invocation
// happens on the single processing goroutine owned by the Manager.
package audiocore

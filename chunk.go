package httpcodec

// ChunkInfo is the result of a NextChunkInfo call: Ptr aliases into the
// owning engine's internal buffer at its current cursor, and Max is the
// largest number of bytes the caller may transfer through Ptr before
// reporting back via Ingest/MarkRead.
//
// Ptr is nil and Max is 0 when the engine is in a terminal state;
// callers must treat Max == 0 as "stop". Transferring more than Max
// bytes through Ptr, or committing a count larger than was actually
// transferred, is undefined behavior — the engines perform no runtime
// check for it, mirroring the teacher's own documented "MUST NOT" API
// contracts enforced by convention rather than by code.
type ChunkInfo struct {
	Ptr []byte
	Max int
}

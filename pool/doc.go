// Package pool
// Author: momentics <momentics@gmail.com>
//
// Byte buffers for the non-blocking I/O path.
// ByteBuffer implements the fill -> flip -> drain cursor discipline used by every
// read and write attempt. BufferSource decides where the backing storage comes from:
// HeapSource allocates per call, SizeClassPool recycles by power-of-two class.
package pool

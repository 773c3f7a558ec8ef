// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for nioclient components.

package benchmarks

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/momentics/nioclient/api"
	"github.com/momentics/nioclient/client"
	"github.com/momentics/nioclient/internal/concurrency"
	"github.com/momentics/nioclient/pool"
	"github.com/rs/zerolog"
)

// BenchmarkSizeClassPool tests pooled buffer get/put under contention.
func BenchmarkSizeClassPool(b *testing.B) {
	p := pool.NewSizeClassPool()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := p.Get(1024)
			p.Put(buf)
		}
	})
}

// BenchmarkByteBufferCycle tests one fill/flip/drain cycle of a 1 KiB buffer.
func BenchmarkByteBufferCycle(b *testing.B) {
	src := strings.Repeat("x", 1024)
	buf := pool.Allocate(len(src))
	b.SetBytes(int64(len(src)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Clear()
		if _, err := buf.FillFrom(strings.NewReader(src)); err != nil {
			b.Fatal(err)
		}
		buf.Flip()
		if _, err := buf.DrainTo(io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTaskQueue tests many producers feeding one draining consumer.
func BenchmarkTaskQueue(b *testing.B) {
	q := concurrency.NewTaskQueue[int]()
	done := make(chan struct{})
	go func() {
		var batch []int
		for {
			select {
			case <-done:
				return
			default:
			}
			batch = q.Drain(batch[:0], 0)
		}
	}()
	defer close(done)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Push(i)
			i++
		}
	})
}

// BenchmarkLoopbackSend tests end-to-end Send throughput to a draining peer.
func BenchmarkLoopbackSend(b *testing.B) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		b.Fatal(err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.Copy(io.Discard, conn)
	}()

	logger := zerolog.Nop()
	cfg := client.DefaultConfig()
	cfg.Logger = &logger
	cfg.Handler = api.HandlerFuncs{}
	cfg.PooledBuffers = true
	c := client.New(cfg)
	if err := c.Start("127.0.0.1", ln.Addr().(*net.TCPAddr).Port); err != nil {
		b.Fatal(err)
	}
	defer c.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for c.State() != api.StateConnected {
		if time.Now().After(deadline) {
			b.Fatal("connect timeout")
		}
		time.Sleep(time.Millisecond)
	}

	msg := strings.Repeat("m", 512)
	b.SetBytes(int64(len(msg)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Send(msg); err != nil {
			b.Fatal(err)
		}
	}
}

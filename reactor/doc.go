// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness multiplexer: a registration table of
// descriptors and interest flags plus a bounded wait that reports which
// registrations are ready. The Linux implementation is level-triggered epoll
// with an eventfd used to wake a blocked Wait from another goroutine.
package reactor

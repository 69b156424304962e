// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package scheduler implements the deterministic, single-threaded
// cooperative scheduler that drives the rest of the core one cycle at a
// time. There is no real concurrency here: each Task is an opaque
// resumable computation, and "parallelism" between the CPU, the memory
// unit and (eventually) DMA is simulated entirely by interleaving calls to
// Task.Step at the scheduler's chosen due times.
//
// The source this core was ported from expressed tasks as Rust
// generators. Go has no equivalent language feature, and generators are a
// poor fit for a debuggable emulator core regardless: instead, each task
// is a small hand-written state machine that knows how to pick up where it
// left off. TaskFunc lets a closure play that role without declaring a
// named type for every task.
package scheduler

// Task is a cooperatively scheduled unit of work. Step is called once each
// time the task becomes due. It returns the number of cycles to wait
// before the task should run again, and whether the task has completed
// and should be removed from the scheduler.
//
// A Task that yields zero cycles is legal: it will be re-queued at the
// current time and stepped again on the very next pass through the
// scheduler's run loop. This is how a task waits on a condition set by
// another task without the scheduler needing to support explicit
// inter-task wake-ups.
type Task interface {
	Step() (yield uint64, done bool)
}

// TaskFunc adapts a plain function to the Task interface. The function
// must carry its own state (typically via closure capture) between calls.
type TaskFunc func() (yield uint64, done bool)

// Step implements Task.
func (f TaskFunc) Step() (uint64, bool) {
	return f()
}

// ID identifies a task registered with a Scheduler.
type ID uint64

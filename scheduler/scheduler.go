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

package scheduler

import "container/heap"

// Scheduler advances a virtual cycle counter and resumes tasks whose due
// time has arrived. Tasks due at the same cycle run in the order they
// were enqueued: the CPU is always added before the memory unit, so at
// every cycle the CPU's bus request is visible to memory before memory
// runs.
type Scheduler struct {
	now uint64

	tasks map[ID]Task
	queue itemQueue

	nextTaskID  ID
	nextSchedID uint64
}

// item is one entry in the due-time priority queue.
type item struct {
	taskID   ID
	due      uint64
	schedID  uint64 // monotone, breaks ties between equal due times (FIFO)
	heapIdx  int
}

// New returns an empty Scheduler with its cycle counter at zero.
func New() *Scheduler {
	s := &Scheduler{
		tasks: make(map[ID]Task),
	}
	heap.Init(&s.queue)
	return s
}

// CurrentCycle implements random.CycleSource.
func (s *Scheduler) CurrentCycle() uint64 {
	return s.now
}

// AddTask registers t, assigning it a fresh ID, and enqueues it to run on
// the very next call to RunFor (ie. at the current time).
func (s *Scheduler) AddTask(t Task) ID {
	id := s.nextTaskID
	s.nextTaskID++

	s.tasks[id] = t
	s.enqueue(id, s.now)

	return id
}

// CancelTask removes a task from the scheduler. Any entry already sitting
// in the due-time queue for this task becomes stale and is silently
// skipped the next time it's popped; there is no need to scan the queue
// here.
func (s *Scheduler) CancelTask(id ID) {
	delete(s.tasks, id)
}

func (s *Scheduler) enqueue(id ID, due uint64) {
	schedID := s.nextSchedID
	s.nextSchedID++
	heap.Push(&s.queue, &item{taskID: id, due: due, schedID: schedID})
}

// RunFor advances the scheduler by n cycles, resuming every task whose due
// time falls strictly before now+n, in due-time then scheduling-id order.
func (s *Scheduler) RunFor(n uint64) {
	horizon := s.now + n

	for s.queue.Len() > 0 && s.queue[0].due < horizon {
		it := heap.Pop(&s.queue).(*item)

		t, ok := s.tasks[it.taskID]
		if !ok {
			// the task was cancelled after this entry was queued
			continue
		}

		s.now = it.due

		yield, done := t.Step()
		if done {
			delete(s.tasks, it.taskID)
			continue
		}

		s.enqueue(it.taskID, s.now+yield)
	}

	s.now = horizon
}

// CurrentTime returns the scheduler's virtual cycle counter.
func (s *Scheduler) CurrentTime() uint64 {
	return s.now
}

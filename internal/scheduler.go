package internal

// JobQueue coalesces reruns: a job scheduled several times before a flush runs once,
// in the order it was first scheduled. Schedule is meant to be used as an effect Scheduler.
type JobQueue struct {
	jobs    []*Job
	pending map[*Job]struct{}

	flushing bool
}

func NewJobQueue() *JobQueue {
	return &JobQueue{
		pending: make(map[*Job]struct{}),
	}
}

func (q *JobQueue) Schedule(job *Job) {
	if _, ok := q.pending[job]; ok {
		return
	}

	q.pending[job] = struct{}{}
	q.jobs = append(q.jobs, job)
}

func (q *JobQueue) Len() int { return len(q.jobs) }

// Flush runs the queued jobs. Jobs scheduled while flushing run in the same flush.
// A nested call returns immediately.
func (q *JobQueue) Flush() {
	if q.flushing {
		return
	}

	q.flushing = true
	defer func() { q.flushing = false }()

	for len(q.jobs) > 0 {
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		delete(q.pending, job)

		job.Run()
	}
}

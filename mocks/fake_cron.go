//+build !release

package mocks

import "sync"

// Fake cron, stores jobs and allows to invoke them manually.
type fakeCron struct {
	sync.Mutex
	jobs   map[int]func()
	specs  map[int]string
	lastID int
}

// AddFunc stores a job.
func (c *fakeCron) AddFunc(spec string, cmd func()) (int, error) {
	c.Lock()
	defer c.Unlock()

	c.lastID++
	c.jobs[c.lastID] = cmd
	c.specs[c.lastID] = spec
	return c.lastID, nil
}

// RemoveFunc removes a job.
func (c *fakeCron) RemoveFunc(id int) {
	c.Lock()
	defer c.Unlock()

	delete(c.jobs, id)
	delete(c.specs, id)
}

// Stop does nothing.
func (c *fakeCron) Stop() {
}

// Fire invokes all registered jobs.
func (c *fakeCron) Fire() {
	c.Lock()
	jobs := make([]func(), 0, len(c.jobs))
	for _, v := range c.jobs {
		jobs = append(jobs, v)
	}
	c.Unlock()

	for _, v := range jobs {
		v()
	}
}

// Specs returns registered specs.
func (c *fakeCron) Specs() []string {
	c.Lock()
	defer c.Unlock()

	specs := make([]string, 0, len(c.specs))
	for _, v := range c.specs {
		specs = append(specs, v)
	}

	return specs
}

// Count returns number of registered jobs.
func (c *fakeCron) Count() int {
	c.Lock()
	defer c.Unlock()
	return len(c.jobs)
}

// FakeNewCron creates a fake cron provider.
func FakeNewCron() *fakeCron {
	return &fakeCron{
		jobs:  make(map[int]func()),
		specs: make(map[int]string),
	}
}

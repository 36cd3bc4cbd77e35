// Package cleanup collects undo steps for multi-step operations.
//
//	var cu cleanup.Cleanup
//	defer cu.Clean()
//	...
//	cu.Add(func() { undo() })
//	...
//	cu.Release()
package cleanup

// Cleanup runs the added functions in reverse order unless released.
type Cleanup struct {
	fns []func()
}

// Add registers f to run on Clean.
func (c *Cleanup) Add(f func()) {
	c.fns = append(c.fns, f)
}

// Clean runs all registered functions, last added first.
func (c *Cleanup) Clean() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
	c.fns = nil
}

// Release drops all registered functions, so a later Clean does nothing.
func (c *Cleanup) Release() {
	c.fns = nil
}

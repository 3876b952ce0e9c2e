package engine

// Display defines the interface for all output modes
type Display interface {
	// Run drives the render and trigger tasks until the display is closed
	// or its work is done, then releases its resources
	Run() error
}

var (
	_ Display = (*TerminalView)(nil)
	_ Display = (*Headless)(nil)
)

package coder

// Compute is a compute budget instruction: 2 sets the unit limit, 3 the unit price.
type Compute struct {
	Instruction uint8
	Value       uint64
}

const (
	ComputeUnitLimit uint8 = 2
	ComputeUnitPrice uint8 = 3
)

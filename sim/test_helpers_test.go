package sim

// ioDescriptors mirrors the I/O operations scenario form.
func ioDescriptors() []ParameterDescriptor {
	return []ParameterDescriptor{
		{Name: "numTasks", Field: "num_tasks", Kind: KindInteger, Min: Bound(1), Max: Bound(100), Default: "1", Label: "the number of tasks"},
		{Name: "taskGflop", Field: "task_gflop", Kind: KindInteger, Min: Bound(1), Max: Bound(999999), Default: "100"},
		{Name: "amountInput", Field: "task_input", Kind: KindInteger, Min: Bound(0), Max: Bound(999), Default: "1"},
		{Name: "overlapAllowed", Field: "io_overlap", Kind: KindBoolean, Default: "false"},
		{Name: "scheduler", Kind: KindEnum, Choices: []string{"random", "fastest"}, Default: "random"},
	}
}

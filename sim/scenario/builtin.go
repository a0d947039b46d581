package scenario

import "github.com/eduwrench/simclient/sim"

// Built-in scenarios matching the platform's simulation pages.
// Each returns a valid Scenario ready for a controller.

// IOOperations is the single-core computing scenario with task I/O.
func IOOperations() Scenario {
	return Scenario{
		Name: "io_operations", Title: "Single core computing with I/O", Path: "/run/io_operations",
		Parameters: []sim.ParameterDescriptor{
			{Name: "numTasks", Field: "num_tasks", Kind: sim.KindInteger, Min: sim.Bound(1), Max: sim.Bound(100), Default: "1",
				Label: "Number of Tasks", Message: "Please provide the number of tasks in the range of [1, 100]."},
			{Name: "taskGflop", Field: "task_gflop", Kind: sim.KindInteger, Min: sim.Bound(1), Max: sim.Bound(999999), Default: "100",
				Label: "Task Gflop", Message: "Please provide the amount of Gflop per task in the range of [1, 999999]."},
			{Name: "amountInput", Field: "task_input", Kind: sim.KindInteger, Min: sim.Bound(0), Max: sim.Bound(999), Default: "1",
				Label: "Amount of Task Input Data", Message: "Please provide the amount of input data per task in the range of [0, 999] MB."},
			{Name: "amountOutput", Field: "task_output", Kind: sim.KindInteger, Min: sim.Bound(0), Max: sim.Bound(999), Default: "1",
				Label: "Amount of Task Output Data", Message: "Please provide the amount of output data per task in the range of [0, 999] MB."},
			{Name: "overlapAllowed", Field: "io_overlap", Kind: sim.KindBoolean, Default: "false",
				Label: "IO Overlap Allowed"},
		},
	}
}

// ThrustdCloud is the Montage workflow scenario split between a local cluster and the cloud.
func ThrustdCloud() Scenario {
	local := func(name string) sim.ParameterDescriptor {
		return sim.ParameterDescriptor{Name: name, Kind: sim.KindBoolean, Default: "false"}
	}
	share := func(name string) sim.ParameterDescriptor {
		return sim.ParameterDescriptor{Name: name, Kind: sim.KindInteger, Min: sim.Bound(0), Max: sim.Bound(100), Default: "0",
			Label: name + " (percent run locally)"}
	}
	return Scenario{
		Name: "thrustd_cloud", Title: "Montage on a local cluster and the cloud", Path: "/run/thrustd_cloud",
		Parameters: []sim.ParameterDescriptor{
			{Name: "numHosts", Field: "num_hosts", Kind: sim.KindInteger, Min: sim.Bound(1), Max: sim.Bound(128), Default: "1",
				Label: "Number of Hosts", Message: "Please provide the number of hosts in the range of [1, 128]."},
			{Name: "pstate", Kind: sim.KindInteger, Min: sim.Bound(0), Max: sim.Bound(6), Default: "0",
				Label: "Pstate Value", Message: "Please provide the pstate in the range of [0, 6]."},
			{Name: "cloudHosts", Kind: sim.KindInteger, Min: sim.Bound(0), Max: sim.Bound(128), Default: "0",
				Label: "Number of Cloud Hosts", Message: "Please provide the number of cloud hosts in the range of [0, 128]."},
			{Name: "numVmInstances", Kind: sim.KindInteger, Min: sim.Bound(0), Max: sim.Bound(128), Default: "0",
				Label: "Number of VM Instances", Message: "Please provide the number of VM instances in the range of [0, 128]."},
			share("mProjectLocal"),
			share("mDiffFitLocal"),
			local("mConcatFitLocal"),
			local("mBgModelLocal"),
			share("mBackgroundLocal"),
			local("mImgtblLocal"),
			local("mAddLocal"),
			local("mViewerLocal"),
		},
	}
}

// MasterWorker is the master/worker scheduling scenario.
func MasterWorker() Scenario {
	return Scenario{
		Name: "master_worker", Title: "Master/worker scheduling", Path: "/run/master_worker",
		Parameters: []sim.ParameterDescriptor{
			{Name: "numTasks", Field: "num_tasks", Kind: sim.KindInteger, Min: sim.Bound(1), Max: sim.Bound(100), Default: "10",
				Label: "Number of Tasks"},
			{Name: "taskScheduling", Field: "task_scheduling_selection", Kind: sim.KindEnum, Default: "random",
				Choices: []string{"random", "highest_flop", "lowest_flop", "highest_bytes", "lowest_bytes", "highest_ratio", "lowest_ratio"},
				Label:   "Task Scheduling"},
			{Name: "computeScheduling", Field: "compute_scheduling_selection", Kind: sim.KindEnum, Default: "random",
				Choices: []string{"random", "fastest_worker", "best_connected", "largest_ratio", "earliest_completion"},
				Label:   "Worker Selection"},
			{Name: "seed", Kind: sim.KindInteger, Min: sim.Bound(0), Max: sim.Bound(999999), Default: "0", Label: "Random Seed"},
			{Name: "invocations", Field: "num_invocation", Kind: sim.KindInteger, Min: sim.Bound(1), Max: sim.Bound(100), Default: "1",
				Label: "Number of Invocations"},
		},
	}
}

// WorkflowDistributed is the distributed workflow execution scenario.
func WorkflowDistributed() Scenario {
	return Scenario{
		Name: "workflow_distributed", Title: "Distributed workflow execution", Path: "/run/workflow_distributed",
		Parameters: []sim.ParameterDescriptor{
			{Name: "numHosts", Field: "num_hosts", Kind: sim.KindInteger, Min: sim.Bound(1), Default: "1", Label: "Number of Hosts"},
			{Name: "numCores", Field: "num_cores", Kind: sim.KindInteger, Min: sim.Bound(1), Default: "1", Label: "Cores per Host"},
			{Name: "linkBandwidth", Field: "link_bandwidth", Kind: sim.KindInteger, Min: sim.Bound(1), Default: "10",
				Label: "Wide-area Bandwidth (MBps)"},
		},
	}
}

// Builtin returns the catalog of built-in scenarios.
func Builtin() *Catalog {
	return &Catalog{
		Version: "1",
		Scenarios: []Scenario{
			IOOperations(),
			ThrustdCloud(),
			MasterWorker(),
			WorkflowDistributed(),
		},
	}
}

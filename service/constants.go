package service

const (
	MaxSimulationCount = 100_000 // upper bound for a single request
	MaxPaybackYears    = 50      // longest write-off term of any plan
	MaxSalary          = 100_000_000.0
	MaxLoanAmount      = 10_000_000.0

	DefaultSimulationCount = 10_000
	DefaultLookbackYears   = 20

	// PathsPerChunk is the unit of work handed to a worker. Chunk k always
	// gets the random stream derived from (seed, k).
	PathsPerChunk = 500

	HistogramBins = 40
)

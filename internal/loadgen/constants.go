package loadgen

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
)

// Endpoint paths.
const (
	pathConstruct = "/model-construct"
	pathData      = "/data"
	pathReset     = "/reset"
	pathHealth    = "/healthz"
)

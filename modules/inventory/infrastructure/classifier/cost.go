package classifier

// Static per-call cost estimates in USD, accumulated into the job's
// estimatedCost stat.
var costPerCall = map[string]float64{
	"gpt-4o-mini":   0.0015,
	"gpt-4o":        0.0125,
	"gpt-4.1-mini":  0.0020,
	"gpt-3.5-turbo": 0.0010,
}

const defaultCostPerCall = 0.005

func lookupCost(model string) float64 {
	if cost, ok := costPerCall[model]; ok {
		return cost
	}
	return defaultCostPerCall
}

package llm

// Pricing is the per-model price in USD per million tokens.
type Pricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// modelPricing lists published list prices for the models this service can call.
var modelPricing = map[string]Pricing{
	"claude-haiku-4-5":      {InputPerMTok: 1.00, OutputPerMTok: 5.00},
	"gemini-2.5-flash":      {InputPerMTok: 0.30, OutputPerMTok: 2.50},
	"gemini-2.5-flash-lite": {InputPerMTok: 0.10, OutputPerMTok: 0.40},
	"gemini-2.5-pro":        {InputPerMTok: 1.25, OutputPerMTok: 10.00},
	"gpt-4o-mini":           {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4o":                {InputPerMTok: 2.50, OutputPerMTok: 10.00},
}

// PricingFor returns the pricing for a model and whether it is known.
func PricingFor(model string) (Pricing, bool) {
	p, ok := modelPricing[model]
	return p, ok
}

// CalculateCost returns the USD cost of a call. Unknown models cost 0.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	p := modelPricing[model]
	inputCost := float64(inputTokens) * p.InputPerMTok / 1_000_000
	outputCost := float64(outputTokens) * p.OutputPerMTok / 1_000_000
	return inputCost + outputCost
}

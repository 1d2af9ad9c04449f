package prices

// bulkPriceResponse is the unified price API's bulk response. Example:
//
//	{
//	  "prices": {"WLD": 1.87, "USDC": 0.9998, "WETH": 3456.78}
//	}
//
// Symbols the API cannot price are omitted; an empty map is a valid
// response.
type bulkPriceResponse struct {
	Prices map[string]float64 `json:"prices"`
}

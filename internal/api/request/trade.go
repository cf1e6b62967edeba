package request

// TradeRequest represents the request body for buying or selling shares
type TradeRequest struct {
	Action string `json:"action"`
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

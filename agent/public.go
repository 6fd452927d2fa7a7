package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/docs"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// creates the facilitator
func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and keep context of your previous questions.

			The user holds a portfolio of crypto assets and is here to understand it: performance,
			allocation, past trades, or news about the coins they hold.

			Devise a plan of questions to ask to each expert and come up with the best response to the user's request.
			The user will assume that you know about their coins, ask the Accountant first to learn what they are.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst returns an expert of crypto markets grounded with Google Search.
func NewAnalyst(model string) *Expert {
	return &Expert{
		Name: "Analyst",
		Description: `This is an expert of crypto markets,
		well aware of coins, tokens, exchanges and the latest news about them.
		Ask the Analyst whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert of crypto markets, you can search and find about anything related to
			coins, tokens, blockchains and exchanges. You leverage Google Search to
			ground your assertions in a solid truth.
			You can get the latest news too, and you know how to relate them to the user's request.
			`}}},
		},
	}
}

// NewAccountant returns an expert of the user's books: the transaction log
// and the portfolio metrics valued at prices.
func NewAccountant(model string, ledger *coinfolio.Ledger, prices coinfolio.Prices) *Expert {
	lib := []Function{PortfolioMetrics(ledger, prices), ListTransactions(ledger)}

	rules, err := docs.GetTopic("cost-basis")
	if err != nil {
		rules = ""
	}

	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. They are in charge of reading the user's transaction log.
		They compute the relevant figures about the user's portfolio: holdings, cost basis,
		realized and unrealized profit, invested cash.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's crypto portfolio.
				You know how to use the Tools to extract relevant information about the portfolio.
				You are part of a team of experts, yours is everything about the user's portfolio. They might ask
				you questions with approximate language, figure out what they meant.

				Amounts are in the quote currency of the portfolio. Here are the accounting rules:

				` + rules}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

// output returns a response holding v encoded as JSON.
func output(id, name string, v any) *genai.FunctionResponse {
	data, err := json.Marshal(v)
	if err != nil {
		return failure(id, name, err)
	}
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"output": string(data)},
	}
}

// PortfolioMetrics returns the function computing the metrics of the ledger.
func PortfolioMetrics(ledger *coinfolio.Ledger, prices coinfolio.Prices) *Func {
	const name = "portfolio_metrics"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `portfolio_metrics computes the current state of the portfolio from its transaction log.

			For each asset: holdings, cost basis, average cost, realized profit, live price, current value and unrealized profit.
			A null value means it is unknown, usually because there is no live price for this asset.
			It also returns the portfolio totals, and the timeline of the portfolio after each transaction.`,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The JSON encoded metrics.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return output(id, name, ledger.Metrics(prices))
		},
	}
}

// ListTransactions returns the function listing the transactions of the ledger.
func ListTransactions(ledger *coinfolio.Ledger) *Func {
	const name = "list_transactions"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `list_transactions lists the buy and sell transactions of the portfolio, newest first.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"symbol": {
						Type:        genai.TypeString,
						Description: "Only list transactions of the coin with this ticker symbol, like BTC. All coins by default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A JSON array of transactions.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			symbol := ""
			if v, ok := args["symbol"]; ok {
				s, ok := v.(string)
				if !ok {
					return failure(id, name, fmt.Errorf("argument 'symbol' is not a string as expected but %T", v))
				}
				symbol = strings.TrimSpace(s)
			}

			txs := make([]coinfolio.Transaction, 0, ledger.Len())
			for _, tx := range ledger.Filter(coinfolio.Filter{}) {
				if symbol == "" || strings.EqualFold(tx.Symbol, symbol) {
					txs = append(txs, tx)
				}
			}
			return output(id, name, txs)
		},
	}
}

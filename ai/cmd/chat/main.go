package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"deskhive.com/deskhive/ai/deskhive"
	"deskhive.com/deskhive/core/renewal"
	"deskhive.com/deskhive/core/store"
	"deskhive.com/deskhive/core/termination"
	v1 "deskhive.com/deskhive/postgrest/v1"
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/server"
	"google.golang.org/genai"
)

var history = []*ai.Message{}

var model = googlegenai.GoogleAIModelRef("gemini-2.5-flash", &genai.GenerateContentConfig{
	MaxOutputTokens: 800,
	Temperature:     genai.Ptr[float32](0.0),
	TopP:            genai.Ptr[float32](0.4),
	TopK:            genai.Ptr[float32](5),
	ThinkingConfig: &genai.ThinkingConfig{
		ThinkingBudget: genai.Ptr[int32](0),
	},
})

type ContractInput struct {
	ContractID int64 `json:"contractId" jsonschema_description:"Numeric contract id"`
}

type CaseInput struct {
	CaseID int64 `json:"caseId" jsonschema_description:"Numeric termination case id"`
}

type WindowInput struct {
	WindowDays int `json:"windowDays,omitempty" jsonschema_description:"How many days ahead to look, defaults to 60"`
}

type FlagInput struct {
	ContractID int64  `json:"contractId" jsonschema_description:"Numeric contract id"`
	Flag       string `json:"flag" jsonschema_description:"One of notified, confirmed, paid, signed"`
	Value      bool   `json:"value" jsonschema_description:"true to stamp the milestone, false to clear it"`
}

func main() {
	ctx := context.Background()

	// The Google AI plugin reads GEMINI_API_KEY / GOOGLE_API_KEY from the
	// environment when no key is set here.
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}, &deskhive.DeskhivePlugin{}))

	client := v1.NewPostgrestClient(os.Getenv("DATA_API_URL"), os.Getenv("DATA_API_TOKEN"))
	dataStore := store.New(client)
	toolbox := &deskhive.Toolbox{
		Store:        dataStore,
		Tracker:      renewal.NewTracker(dataStore),
		Terminations: termination.NewService(dataStore),
	}

	contractRenewal := genkit.DefineTool(g, "contractRenewal", "Look up a contract and its renewal milestone status",
		func(ctx *ai.ToolContext, input ContractInput) (string, error) {
			return toolbox.ContractRenewal(ctx, input.ContractID)
		},
	)

	terminationCase := genkit.DefineTool(g, "terminationCase", "Look up a termination case with its checklist and settlement figures",
		func(ctx *ai.ToolContext, input CaseInput) (string, error) {
			return toolbox.TerminationCase(ctx, input.CaseID)
		},
	)

	expiringContracts := genkit.DefineTool(g, "expiringContracts", "List contracts that end within the coming window",
		func(ctx *ai.ToolContext, input WindowInput) (string, error) {
			return toolbox.ExpiringContracts(ctx, input.WindowDays)
		},
	)

	setRenewalFlag := genkit.DefineTool(g, "setRenewalFlag", "Stamp or clear a renewal milestone on a contract",
		func(ctx *ai.ToolContext, input FlagInput) (string, error) {
			return toolbox.SetRenewalFlag(ctx, input.ContractID, input.Flag, input.Value)
		},
	)

	bot := genkit.DefineStreamingFlow(g, "backoffice", func(ctx context.Context, input string, cb ai.ModelStreamCallback) (string, error) {
		resp, err := genkit.Generate(ctx, g,
			ai.WithModel(model),
			ai.WithSystem(`
		You are the DeskHive back-office assistant. You help front-desk staff
		track contract renewals and move-out (termination) cases for a
		coworking space.

		Guidelines:
		1. Renewal milestones are notified, confirmed, paid, signed. Paying or
		   signing implies the tenant confirmed; the system stamps that
		   automatically, so never set "confirmed" yourself when the user
		   reports a payment or signature.
		2. Before changing any milestone, look the contract up and tell the
		   user what the current stage is.
		3. Termination cases move through notice_received, moving_out,
		   pending_doc, pending_settlement, completed, cancelled. Completed and
		   cancelled are final; settlement figures come from the case record,
		   never compute them yourself.
		4. Amounts are in TWD. Dates are Taiwan local dates in YYYY-MM-DD.
		5. If a lookup fails, report the error message verbatim instead of
		   guessing.
		`),
			ai.WithStreaming(cb),
			ai.WithTools(contractRenewal, terminationCase, expiringContracts, setRenewalFlag),
			ai.WithMessages(history...),
			ai.WithPrompt(input))
		if err != nil {
			return "", err
		}

		history = resp.History()

		return resp.Text(), nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", genkit.Handler(bot))
	log.Fatal(server.Start(ctx, "127.0.0.1:3400", mux))
}

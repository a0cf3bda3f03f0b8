package deskhive

import (
	"context"

	"github.com/firebase/genkit/go/core/api"
)

const providerID = "deskhive"

type DeskhivePlugin struct {
}

func (p *DeskhivePlugin) Name() string {
	return providerID
}

func (m *DeskhivePlugin) Init(ctx context.Context) []api.Action {
	return []api.Action{}
}

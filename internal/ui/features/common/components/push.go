package components

import (
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/routelens/internal/ui/features/common"
)

// PushView patches the app shell and resets the select signals.
func PushView(sse *datastar.ServerSentEventGenerator, v common.View) error {
	if err := sse.PatchElementTempl(AppShell(v)); err != nil {
		return err
	}
	return sse.MarshalAndPatchSignals(common.SignalsFor(v.State.Selection))
}

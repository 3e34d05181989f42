package host

import (
	"log/slog"

	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// SlogEvents writes every event as one info line, attributes flattened.
type SlogEvents struct {
	Log *slog.Logger
}

func (s SlogEvents) Emit(e sdk.Event) {
	if s.Log == nil {
		return
	}
	args := make([]any, 0, 2*len(e.Attrs))
	for _, a := range e.Attrs {
		args = append(args, a.Key, a.Value)
	}
	s.Log.Info(e.Name, args...)
}

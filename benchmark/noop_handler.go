package benchmark

import (
	"github.com/philipp01105/insightslog/core"
	"github.com/philipp01105/insightslog/handler"
)

// noopHandler measures the logger pipeline alone: records are touched and
// returned to the pool without formatting.
type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return &noopHandler{}
}

func (h *noopHandler) Handle(e *core.Entry) error {
	_ = len(e.Message) + e.Properties.Len()
	core.PutEntry(e)
	return nil
}

func (h *noopHandler) Close() error {
	return nil
}

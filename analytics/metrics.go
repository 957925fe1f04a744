package analytics

import (
	"context"

	"memorymatch/core"
)

// HookFunc adapts a plain function to Hook.
type HookFunc func(core.Event)

func (f HookFunc) OnEvent(e core.Event) { f(e) }

// Bridge fans bus events out to a set of hooks.
type Bridge struct{ hooks []Hook }

func NewBridge(hooks ...Hook) *Bridge { return &Bridge{hooks: hooks} }

func (b *Bridge) OnEvent(e core.Event) {
	for _, h := range b.hooks {
		h.OnEvent(e)
	}
}

// Handle has the event bus handler signature.
func (b *Bridge) Handle(_ context.Context, e core.Event) { b.OnEvent(e) }

package settlement

import (
	"fmt"
	"log/slog"
)

// Mode selects the settlement implementation.
type Mode string

const (
	ModeRegistry Mode = "REGISTRY"
	ModeLog      Mode = "LOG"
)

// New returns the Settlement for mode. The registry is returned separately
// because the simulation seeds it with houses and cash.
func New(mode Mode) (Settlement, *Registry, error) {
	slog.Info("Initializing Settlement", slog.String("mode", string(mode)))

	switch mode {
	case ModeRegistry, "":
		r := NewRegistry()
		return r, r, nil
	case ModeLog:
		return NewLogSettlement(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown settlement mode: %s", mode)
	}
}

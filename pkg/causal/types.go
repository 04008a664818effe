package causal

import (
	"fmt"
	"strings"
)

// Layer is the organizational tier of a bill-of-materials node. It plays no
// part in the belief update; it is used for filtering and suspect ranking.
type Layer uint8

const (
	LayerDesign        Layer = iota // EBOM
	LayerManufacturing              // MBOM
	LayerService                    // SBOM
)

// Layers lists every layer in causal order.
var Layers = []Layer{LayerDesign, LayerManufacturing, LayerService}

// String returns the BOM code for the layer.
func (l Layer) String() string {
	switch l {
	case LayerDesign:
		return "EBOM"
	case LayerManufacturing:
		return "MBOM"
	case LayerService:
		return "SBOM"
	default:
		return fmt.Sprintf("Layer(%d)", uint8(l))
	}
}

// Name returns the lower-case human name of the layer.
func (l Layer) Name() string {
	switch l {
	case LayerDesign:
		return "design"
	case LayerManufacturing:
		return "manufacturing"
	case LayerService:
		return "service"
	default:
		return "unknown"
	}
}

// ParseLayer accepts either the BOM code ("EBOM") or the name ("design").
func ParseLayer(s string) (Layer, error) {
	s = strings.TrimSpace(s)
	for _, l := range Layers {
		if strings.EqualFold(s, l.String()) || strings.EqualFold(s, l.Name()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, s)
}

// Observation is the hard-evidence state of a node.
type Observation uint8

const (
	Unobserved Observation = iota
	ConfirmedFailed
	ConfirmedNormal
)

func (o Observation) String() string {
	switch o {
	case Unobserved:
		return "unobserved"
	case ConfirmedFailed:
		return "failed"
	case ConfirmedNormal:
		return "normal"
	default:
		return fmt.Sprintf("Observation(%d)", uint8(o))
	}
}

// IsHardFact reports whether the observation overrides computed belief.
func (o Observation) IsHardFact() bool {
	return o == ConfirmedFailed || o == ConfirmedNormal
}

// ParseObservation accepts "failed", "normal" and "unobserved" (plus "" and
// a few synonyms).
func ParseObservation(s string) (Observation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unobserved", "none", "clear":
		return Unobserved, nil
	case "failed", "fail", "true":
		return ConfirmedFailed, nil
	case "normal", "ok", "false":
		return ConfirmedNormal, nil
	}
	return Unobserved, fmt.Errorf("%w: %q", ErrUnknownObservation, s)
}

// Package nodes provides the demo node catalog used by scenarios, the CLI
// and the HTTP server.
//
// Usage:
//
//	kind := nodes.Find("add")
//	spec := kind.Spec("sum", network.Settings{"bias": 1})
//	net.AddNode(spec)
//
// Numeric ports carry float64 values. Settings accept any Go numeric type
// (TOML decodes integers as int64, JSON as float64).
package nodes

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/matzehuels/cookgraph/pkg/network"
)

// Port types used by the catalog.
const (
	Number network.PortType = "number"
	String network.PortType = "string"
)

// ErrFailNode is returned by the "fail" kind.
var ErrFailNode = errors.New("node failed on purpose")

// Kind describes a node type.
type Kind struct {
	Name        string
	Description string
	Inputs      []network.PortSpec
	Outputs     []network.PortSpec
	Defaults    network.Settings
	Cook        network.CookFunc
}

// Spec builds a NodeSpec with id, the kind's ports, and settings layered
// over the kind's defaults.
func (k *Kind) Spec(id string, settings network.Settings) network.NodeSpec {
	merged := k.Defaults.Clone()
	maps.Copy(merged, settings)
	return network.NodeSpec{
		ID:       id,
		Kind:     k.Name,
		Inputs:   k.Inputs,
		Outputs:  k.Outputs,
		Settings: merged,
		Cooker:   k.Cook,
	}
}

// All is the catalog, in display order.
var All = []*Kind{
	{
		Name:        "constant",
		Description: "emits the value setting",
		Outputs:     []network.PortSpec{{Name: "out", Type: Number}},
		Defaults:    network.Settings{"value": 0.0},
		Cook: func(_ context.Context, _ network.Inputs, s network.Settings) ([]any, error) {
			v, err := setting(s, "value")
			return []any{v}, err
		},
	},
	{
		Name:        "add",
		Description: "sums every linked term plus bias",
		Inputs:      []network.PortSpec{{Name: "terms", Type: Number, Multi: true}},
		Outputs:     []network.PortSpec{{Name: "out", Type: Number}},
		Defaults:    network.Settings{"bias": 0.0},
		Cook: func(_ context.Context, in network.Inputs, s network.Settings) ([]any, error) {
			total, err := setting(s, "bias")
			if err != nil {
				return nil, err
			}
			for i, v := range in[0].([]any) {
				x, err := number(v)
				if err != nil {
					return nil, fmt.Errorf("term %d: %w", i, err)
				}
				total += x
			}
			return []any{total}, nil
		},
	},
	{
		Name:        "multiply",
		Description: "multiplies a by b; unconnected inputs count as 1",
		Inputs:      []network.PortSpec{{Name: "a", Type: Number}, {Name: "b", Type: Number}},
		Outputs:     []network.PortSpec{{Name: "out", Type: Number}},
		Cook: func(_ context.Context, in network.Inputs, _ network.Settings) ([]any, error) {
			product := 1.0
			for _, v := range in {
				if v == nil {
					continue
				}
				x, err := number(v)
				if err != nil {
					return nil, err
				}
				product *= x
			}
			return []any{product}, nil
		},
	},
	{
		Name:        "negate",
		Description: "flips the sign of its input",
		Inputs:      []network.PortSpec{{Name: "in", Type: Number}},
		Outputs:     []network.PortSpec{{Name: "out", Type: Number}},
		Cook: func(_ context.Context, in network.Inputs, _ network.Settings) ([]any, error) {
			if in[0] == nil {
				return []any{0.0}, nil
			}
			x, err := number(in[0])
			return []any{-x}, err
		},
	},
	{
		Name:        "format",
		Description: "formats its input with the template setting",
		Inputs:      []network.PortSpec{{Name: "in", Type: network.AnyType}},
		Outputs:     []network.PortSpec{{Name: "out", Type: String}},
		Defaults:    network.Settings{"template": "%v"},
		Cook: func(_ context.Context, in network.Inputs, s network.Settings) ([]any, error) {
			tmpl, ok := s["template"].(string)
			if !ok {
				return nil, fmt.Errorf("template: want string, got %T", s["template"])
			}
			return []any{fmt.Sprintf(tmpl, in[0])}, nil
		},
	},
	{
		Name:        "delay",
		Description: "passes its input through after ms milliseconds",
		Inputs:      []network.PortSpec{{Name: "in", Type: network.AnyType}},
		Outputs:     []network.PortSpec{{Name: "out", Type: network.AnyType}},
		Defaults:    network.Settings{"ms": 0.0},
		Cook: func(ctx context.Context, in network.Inputs, s network.Settings) ([]any, error) {
			ms, err := setting(s, "ms")
			if err != nil {
				return nil, err
			}
			select {
			case <-time.After(time.Duration(ms * float64(time.Millisecond))):
				return []any{in[0]}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	},
	{
		Name:        "fail",
		Description: "always fails; for exercising error paths",
		Inputs:      []network.PortSpec{{Name: "in", Type: network.AnyType}},
		Outputs:     []network.PortSpec{{Name: "out", Type: network.AnyType}},
		Cook: func(context.Context, network.Inputs, network.Settings) ([]any, error) {
			return nil, ErrFailNode
		},
	},
}

// Find returns the kind with the given name, or nil if not found.
func Find(name string) *Kind {
	for _, k := range All {
		if k.Name == name {
			return k
		}
	}
	return nil
}

// Names returns the catalog's kind names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, k := range All {
		names[i] = k.Name
	}
	return names
}

func setting(s network.Settings, key string) (float64, error) {
	v, ok := s[key]
	if !ok {
		return 0, fmt.Errorf("missing setting %q", key)
	}
	x, err := number(v)
	if err != nil {
		return 0, fmt.Errorf("setting %q: %w", key, err)
	}
	return x, nil
}

// number converts any Go numeric value to float64.
func number(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
}

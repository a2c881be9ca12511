// Package exec implements the pure operators and stateful elements that
// back computed channels (§4.1, §4.2), and the single-pass executor that
// drives them over a channel registry (§4.6).
package exec

import "github.com/fenwick-systems/pcmcore/config"

func truthy(v int32) bool { return v != 0 }

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// EvalLogic evaluates a Logic channel's operator over its resolved inputs
// (§4.1). inputs must already be resolved through the registry in
// cfg.Inputs[:cfg.InputCount] order.
func EvalLogic(cfg config.LogicConfig, inputs []int32) int32 {
	var result bool

	switch cfg.Operation {
	case config.LogicAND:
		result = true
		for _, v := range inputs {
			if !truthy(v) {
				result = false
				break
			}
		}
	case config.LogicOR:
		for _, v := range inputs {
			if truthy(v) {
				result = true
				break
			}
		}
	case config.LogicXOR:
		count := 0
		for _, v := range inputs {
			if truthy(v) {
				count++
			}
		}
		result = count%2 == 1
	case config.LogicNAND:
		result = true
		for _, v := range inputs {
			if !truthy(v) {
				result = false
				break
			}
		}
		result = !result
	case config.LogicNOR:
		any := false
		for _, v := range inputs {
			if truthy(v) {
				any = true
				break
			}
		}
		result = !any
	case config.LogicGT:
		result = first(inputs) > cfg.CompareValue
	case config.LogicGE:
		result = first(inputs) >= cfg.CompareValue
	case config.LogicLT:
		result = first(inputs) < cfg.CompareValue
	case config.LogicLE:
		result = first(inputs) <= cfg.CompareValue
	case config.LogicEQ:
		result = first(inputs) == cfg.CompareValue
	case config.LogicNE:
		result = first(inputs) != cfg.CompareValue
	case config.LogicInRange:
		lo, hi := boundsOf(inputs)
		result = cfg.CompareValue >= lo && cfg.CompareValue <= hi
	case config.LogicOutsideRange:
		lo, hi := boundsOf(inputs)
		result = cfg.CompareValue < lo || cfg.CompareValue > hi
	}

	if cfg.InvertOutput {
		result = !result
	}
	return boolToInt(result)
}

func first(inputs []int32) int32 {
	if len(inputs) == 0 {
		return 0
	}
	return inputs[0]
}

func boundsOf(inputs []int32) (lo, hi int32) {
	if len(inputs) < 2 {
		return 0, 0
	}
	return inputs[0], inputs[1]
}

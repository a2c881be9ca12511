package exec

import "github.com/fenwick-systems/pcmcore/config"

// EvalMath evaluates a Math channel's operator over its resolved inputs
// (§4.1). All intermediate multiplications widen to 64-bit. Division by
// zero yields zero; the output clamp and rational scale are applied last.
func EvalMath(cfg config.MathConfig, inputs []int32) int32 {
	var result int64

	switch cfg.Operation {
	case config.MathAdd:
		for _, v := range inputs {
			result += int64(v)
		}
	case config.MathSub:
		result = int64(first(inputs))
		for _, v := range inputs[1:] {
			result -= int64(v)
		}
	case config.MathMul:
		result = 1
		for _, v := range inputs {
			result *= int64(v)
		}
	case config.MathDiv:
		result = int64(first(inputs))
		for _, v := range inputs[1:] {
			if v == 0 {
				return 0
			}
			result /= int64(v)
		}
	case config.MathMin:
		result = int64(first(inputs))
		for _, v := range inputs[1:] {
			if int64(v) < result {
				result = int64(v)
			}
		}
	case config.MathMax:
		result = int64(first(inputs))
		for _, v := range inputs[1:] {
			if int64(v) > result {
				result = int64(v)
			}
		}
	case config.MathAvg:
		if len(inputs) == 0 {
			return 0
		}
		var sum int64
		for _, v := range inputs {
			sum += int64(v)
		}
		result = sum / int64(len(inputs))
	case config.MathClamp:
		result = int64(first(inputs))
		if result < int64(cfg.ClampMin) {
			result = int64(cfg.ClampMin)
		}
		if result > int64(cfg.ClampMax) {
			result = int64(cfg.ClampMax)
		}
	case config.MathMap:
		result = evalMap(inputs, cfg.Constant)
	case config.MathScale:
		result = int64(first(inputs)) + int64(cfg.Constant)
	case config.MathLerp:
		a, b := boundsOf(inputs)
		result = evalLerp(int64(a), int64(b), int64(cfg.Constant))
	}

	result = applyClamp(result, cfg.ClampMin, cfg.ClampMax)
	result = applyScale(result, cfg.Scale)

	return int32(result)
}

// evalMap implements `in_min + (in_max-in_min) * t / 1000` for t in
// [0,1000] (§4.1). inputs carries [in_min, in_max]; t is the constant.
func evalMap(inputs []int32, t int32) int64 {
	inMin, inMax := boundsOf(inputs)
	return int64(inMin) + (int64(inMax)-int64(inMin))*int64(t)/1000
}

func evalLerp(a, b, t int64) int64 {
	return a + (b-a)*t/1000
}

func applyClamp(v int64, min, max int16) int64 {
	if min == 0 && max == 0 {
		return v
	}
	if v < int64(min) {
		return int64(min)
	}
	if v > int64(max) {
		return int64(max)
	}
	return v
}

func applyScale(v int64, r config.Rational) int64 {
	if r.Den == 0 {
		return v
	}
	return (v * int64(r.Num)) / int64(r.Den)
}

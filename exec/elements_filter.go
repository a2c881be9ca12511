package exec

import "github.com/fenwick-systems/pcmcore/config"

// UpdateFilter advances a Filter channel's workspace by one pass and
// returns the new output value (§4.2). The meaning of TimeConstant/Alpha in
// cfg is overloaded per FilterKind: SMA/Median use WindowSize as the
// window, EMA uses Alpha, LPF uses TimeConstant as tau (ms), RateLimit uses
// TimeConstant as a symmetric rise/fall rate (units per second), and
// Debounce uses TimeConstant as the dwell threshold in ms.
func UpdateFilter(ws *FilterWorkspace, cfg config.FilterConfig, input int32, dtMs uint32) int32 {
	switch cfg.FilterKind {
	case config.FilterSMA:
		return updateSMA(ws, cfg, input)
	case config.FilterEMA:
		return updateEMA(ws, cfg, input)
	case config.FilterLPF:
		return updateLPF(ws, cfg, input, dtMs)
	case config.FilterMedian:
		return updateMedian(ws, cfg, input)
	case config.FilterRateLimit:
		return updateRateLimit(ws, cfg, input, dtMs)
	case config.FilterDebounce:
		return updateDebounce(ws, cfg, input, dtMs)
	default:
		return input
	}
}

func windowSize(cfg config.FilterConfig) int {
	n := int(cfg.WindowSize)
	if n < 1 {
		n = 1
	}
	if n > config.FilterMaxSamples {
		n = config.FilterMaxSamples
	}
	return n
}

func updateSMA(ws *FilterWorkspace, cfg config.FilterConfig, input int32) int32 {
	n := windowSize(cfg)
	ws.Ring[int(ws.Head)%n] = input
	ws.Head = uint8((int(ws.Head) + 1) % n)
	if int(ws.Count) < n {
		ws.Count++
	}

	var sum int64
	for i := 0; i < int(ws.Count); i++ {
		sum += int64(ws.Ring[i])
	}
	return int32(sum / int64(ws.Count))
}

func updateEMA(ws *FilterWorkspace, cfg config.FilterConfig, input int32) int32 {
	if !ws.HasValue {
		ws.HasValue = true
		ws.EMAValue = input
		return input
	}
	alpha := int64(cfg.Alpha)
	if alpha < 1 {
		alpha = 1
	}
	ws.EMAValue = int32((alpha*int64(input) + (256-alpha)*int64(ws.EMAValue)) / 256)
	return ws.EMAValue
}

const lpfScale = 1 << 16

func updateLPF(ws *FilterWorkspace, cfg config.FilterConfig, input int32, dtMs uint32) int32 {
	tau := int64(cfg.TimeConstant)
	if !ws.HasValue {
		ws.HasValue = true
		ws.LPFScaled = int64(input) * lpfScale
		return input
	}
	if tau == 0 {
		ws.LPFScaled = int64(input) * lpfScale
		return input
	}
	dt := int64(dtMs)
	prev := ws.LPFScaled
	ws.LPFScaled = (dt*int64(input)*lpfScale + tau*prev) / (tau + dt)
	return int32(ws.LPFScaled / lpfScale)
}

func updateMedian(ws *FilterWorkspace, cfg config.FilterConfig, input int32) int32 {
	n := windowSize(cfg)
	ws.Ring[int(ws.Head)%n] = input
	ws.Head = uint8((int(ws.Head) + 1) % n)
	if int(ws.Count) < n {
		ws.Count++
	}

	window := make([]int32, ws.Count)
	copy(window, ws.Ring[:ws.Count])
	partialSelectionSortMiddle(window)

	mid := len(window) / 2
	if len(window)%2 == 1 {
		return window[mid]
	}
	return int32((int64(window[mid-1]) + int64(window[mid])) / 2)
}

// partialSelectionSortMiddle sorts only as far as needed to place the
// middle element(s) of window, rather than fully sorting.
func partialSelectionSortMiddle(window []int32) {
	n := len(window)
	limit := n/2 + 1
	for i := 0; i < limit; i++ {
		minIdx := i
		for j := i + 1; j < n; j++ {
			if window[j] < window[minIdx] {
				minIdx = j
			}
		}
		window[i], window[minIdx] = window[minIdx], window[i]
	}
}

func updateRateLimit(ws *FilterWorkspace, cfg config.FilterConfig, target int32, dtMs uint32) int32 {
	if !ws.HasValue {
		ws.HasValue = true
		ws.RLValue = target
		return target
	}
	rate := int64(cfg.TimeConstant)
	if rate < 1 {
		rate = 1
	}
	maxStep := rate * int64(dtMs) / 1000
	if maxStep < 1 {
		maxStep = 1
	}

	delta := int64(target) - int64(ws.RLValue)
	if delta > 0 {
		if delta < maxStep {
			maxStep = delta
		}
		ws.RLValue += int32(maxStep)
	} else if delta < 0 {
		if -delta < maxStep {
			maxStep = -delta
		}
		ws.RLValue -= int32(maxStep)
	}
	return ws.RLValue
}

func updateDebounce(ws *FilterWorkspace, cfg config.FilterConfig, input int32, dtMs uint32) int32 {
	if !ws.DBHasStable {
		ws.DBHasStable = true
		ws.DBStable = input
		ws.DBPending = input
		return input
	}

	band := int32(cfg.WindowSize)
	if abs32(input-ws.DBStable) <= band {
		ws.DBPending = ws.DBStable
		ws.DBDwellMs = 0
		return ws.DBStable
	}

	if input != ws.DBPending {
		ws.DBPending = input
		ws.DBDwellMs = 0
	}
	ws.DBDwellMs += dtMs

	debounceMs := uint32(cfg.TimeConstant)
	if ws.DBDwellMs >= debounceMs {
		ws.DBStable = ws.DBPending
	}
	return ws.DBStable
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

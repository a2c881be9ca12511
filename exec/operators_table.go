package exec

import "github.com/fenwick-systems/pcmcore/config"

// EvalTable2D performs the 1-D table lookup described in §4.1: binary
// search over the ascending X axis, linear interpolation of Y between the
// bracketing pair, with clamping outside the table's domain.
func EvalTable2D(cfg config.Table2DConfig, x int32) int32 {
	n := int(cfg.PointCount)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return int32(cfg.Y[0])
	}

	if x <= int32(cfg.X[0]) {
		return int32(cfg.Y[0])
	}
	if x >= int32(cfg.X[n-1]) {
		return int32(cfg.Y[n-1])
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if int32(cfg.X[mid]) <= x {
			lo = mid
		} else {
			hi = mid
		}
	}

	x0, x1 := int64(cfg.X[lo]), int64(cfg.X[hi])
	y0, y1 := int64(cfg.Y[lo]), int64(cfg.Y[hi])
	if x1 == x0 {
		return int32(y0)
	}
	return int32(y0 + (y1-y0)*(int64(x)-x0)/(x1-x0))
}

// EvalTable3D performs bilinear interpolation over the X/Y axes into the Z
// surface, clamping queries outside either axis' domain.
func EvalTable3D(cfg config.Table3DConfig, x, y int32) int32 {
	nx, ny := int(cfg.XSize), int(cfg.YSize)
	if nx == 0 || ny == 0 {
		return 0
	}

	xi0, xi1, xt := bracket(cfg.X[:nx], x)
	yi0, yi1, yt := bracket(cfg.Y[:ny], y)

	z00 := int64(cfg.Z[xi0][yi0])
	z01 := int64(cfg.Z[xi0][yi1])
	z10 := int64(cfg.Z[xi1][yi0])
	z11 := int64(cfg.Z[xi1][yi1])

	zx0 := z00 + (z10-z00)*xt/1000
	zx1 := z01 + (z11-z01)*xt/1000
	return int32(zx0 + (zx1-zx0)*yt/1000)
}

// bracket finds the bracketing index pair in axis for v, clamping outside
// its domain, and returns a per-mille interpolation factor between them.
func bracket(axis []int16, v int32) (lo, hi int, t int64) {
	n := len(axis)
	if v <= int32(axis[0]) {
		return 0, 0, 0
	}
	if v >= int32(axis[n-1]) {
		return n - 1, n - 1, 0
	}

	lo, hi = 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if int32(axis[mid]) <= v {
			lo = mid
		} else {
			hi = mid
		}
	}

	x0, x1 := int64(axis[lo]), int64(axis[hi])
	if x1 == x0 {
		return lo, hi, 0
	}
	t = (int64(v) - x0) * 1000 / (x1 - x0)
	return lo, hi, t
}

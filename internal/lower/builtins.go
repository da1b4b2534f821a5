// builtins.go lowers the §4.7 builtin table to runtime calls: unary/
// binary libm, fmin/fmax/imin/imax, rand, a memoized dot-product
// generator per vector width, assert, and id/xid/yid/zid key
// extractors (handled in eval.go, since they need the current kernel's
// relation rather than just their scalar arguments).
package lower

import (
	"math"
	"math/rand"
	"sync"

	"parlay/internal/errors"
)

// UnaryMath is the §4.7 "acos asin atan cbrt ceil cos fabs floor fmod
// log sin sqrt tan -> libm" table, minus fmod which takes two operands.
var UnaryMath = map[string]func(float64) float64{
	"acos": math.Acos, "asin": math.Asin, "atan": math.Atan,
	"cbrt": math.Cbrt, "ceil": math.Ceil, "cos": math.Cos,
	"fabs": math.Abs, "floor": math.Floor, "log": math.Log,
	"sin": math.Sin, "sqrt": math.Sqrt, "tan": math.Tan,
}

// BinaryMath is the §4.7 "pow -> libm" entry, plus fmod which is
// naturally binary despite being grouped with the unary table in the
// source's listing.
var BinaryMath = map[string]func(float64, float64) float64{
	"pow":  math.Pow,
	"fmod": math.Mod,
}

// fminFmaxImin implements fmin/fmax/imin/imax -> min/max (§4.7); all
// four share one float64 implementation since this module represents
// every scalar as float64 at runtime.
var fminFmaxImin = map[string]func(float64, float64) float64{
	"fmin": math.Min, "fmax": math.Max,
	"imin": math.Min, "imax": math.Max,
}

// Rand implements rand -> uniform_f64() via rand()/RAND_MAX (§4.7).
func Rand() float64 { return rand.Float64() }

// dotCache holds the memoized straight-line dot product for each
// vector width N (§4.7: "memoized straight-line dot product for each
// (T,N), N in {1,2,3}"); this module's runtime values are always
// float64 so the cache keys on N alone.
var (
	dotCacheMu sync.Mutex
	dotCache   = map[int]func(a, b []float64) float64{}
)

// Dot returns the memoized generator for width N, building it once.
func Dot(n int) func(a, b []float64) float64 {
	dotCacheMu.Lock()
	defer dotCacheMu.Unlock()
	if fn, ok := dotCache[n]; ok {
		return fn
	}
	fn := func(a, b []float64) float64 {
		var sum float64
		for i := 0; i < n; i++ {
			sum += a[i] * b[i]
		}
		return sum
	}
	dotCache[n] = fn
	return fn
}

// Assert implements assert(c) -> runtime assertion with a fixed message (§4.7, §7).
func Assert(cond bool, at errors.Pos) error {
	if cond {
		return nil
	}
	return errors.New(errors.RuntimeAssertion, at, "assertion failed")
}

// Package physics implements the rigid-disc table core.
//
// A [Table] owns an ordered arena of [Disc] values and advances them one tick at a
// time:
//
//   - every disc is slowed and moved, then clamped back inside the walls
//   - every unordered pair (i<j) is then checked for overlap and resolved
//
// All discs share one radius and one set of constants, carried by an immutable
// [Params] value passed to [NewTable].
//
// # Example
//
//	p := physics.DefaultParams()
//	t, _ := physics.NewTable(p, discs)
//	for {
//	    t.Step(dt)
//	    t.Decay(dt)
//	}
//
// # Thread Safety
//
// A Table is NOT thread-safe. Renderers running on other goroutines should work on
// the copies returned by [Table.Snapshot].
package physics

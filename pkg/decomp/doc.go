// Package decomp models the decomposition of a cube of side x+dx into the
// eight solids of the binomial expansion (x+dx)³ = x³ + 3x²dx + 3x·dx² + dx³:
// one box, three face slabs, three edge bars and one point cube.
//
// Generate builds the solids once for a session. State.Update recomputes
// the per-solid transforms each time the dx parameter changes. The package
// never touches a scene graph; renderers apply the returned transforms to
// their own objects.
package decomp

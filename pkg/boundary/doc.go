// Package boundary locates the first match of the current patch by binary
// search over match IDs, probing each candidate's patch.
//
// When the midpoint is a hole the search walks down and then up from it until
// it reaches a classified ID on each side, then uses the patches at those two
// edges to move the bounds:
//   - the upper edge is still before the target patch: lower moves to it
//   - the lower edge is already in the target patch: upper moves to it
//   - otherwise the first target match is the upper edge and the search ends
//
// The walks never pass the current bounds, whose classifications are known.
package boundary

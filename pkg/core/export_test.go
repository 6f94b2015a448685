package core

// SetPruning turns the bounding-box pre-test during traversal on or off.
func (b *BVH) SetPruning(enabled bool) {
	b.noPrune = !enabled
}

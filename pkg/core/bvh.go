package core

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/stat"
)

// SplitStrategy selects where an internal node is divided along its widest axis.
type SplitStrategy int

const (
	// SplitMidpoint splits at the spatial midpoint of the node's box.
	SplitMidpoint SplitStrategy = iota
	// SplitMedian splits the centroid-sorted objects into two equal halves.
	SplitMedian
	// SplitSAH picks the bin boundary with the lowest surface area heuristic cost.
	SplitSAH
)

// sahBins is the number of centroid bins evaluated by SplitSAH.
const sahBins = 12

func (s SplitStrategy) String() string {
	switch s {
	case SplitMidpoint:
		return "midpoint"
	case SplitMedian:
		return "median"
	case SplitSAH:
		return "sah"
	default:
		return fmt.Sprintf("SplitStrategy(%d)", int(s))
	}
}

// ParseSplitStrategy converts a name such as "midpoint" into a SplitStrategy.
func ParseSplitStrategy(name string) (SplitStrategy, error) {
	switch strings.ToLower(name) {
	case "", "midpoint":
		return SplitMidpoint, nil
	case "median":
		return SplitMedian, nil
	case "sah":
		return SplitSAH, nil
	default:
		return 0, Invalidf("unknown split strategy %q", name)
	}
}

// BVHConfig controls how a BVH is built.
type BVHConfig struct {
	LeafSize int           // Nodes with this many objects or fewer become leaves
	MaxDepth int           // Nodes at this depth become leaves regardless of size
	Split    SplitStrategy // Where internal nodes are split
}

// DefaultBVHConfig returns sensible default values
func DefaultBVHConfig() BVHConfig {
	return BVHConfig{
		LeafSize: 4,
		MaxDepth: 32,
		Split:    SplitMidpoint,
	}
}

// Validate reports every problem with the config.
func (c BVHConfig) Validate() error {
	var err error
	if c.LeafSize < 1 {
		err = multierr.Append(err, Invalidf("bvh leaf size must be at least 1, got %d", c.LeafSize))
	}
	if c.MaxDepth < 1 {
		err = multierr.Append(err, Invalidf("bvh max depth must be at least 1, got %d", c.MaxDepth))
	}
	if c.Split < SplitMidpoint || c.Split > SplitSAH {
		err = multierr.Append(err, Invalidf("unknown split strategy %v", c.Split))
	}
	return err
}

// bvhNode is one entry of the node arena. Leaves have count > 0 and address
// leafItems[first:first+count]; internal nodes have count == 0 and child indices,
// where -1 marks an absent child.
type bvhNode struct {
	box         AABB
	left, right int32
	first       int32
	count       int32
}

func (n *bvhNode) isLeaf() bool {
	return n.count > 0
}

// BVH is a bounding volume hierarchy over objects, stored as an index-based arena.
// Objects with unbounded boxes (planes) are kept out of the tree and tested on every query.
type BVH struct {
	config    BVHConfig
	objects   []*Object // Insertion order; every other slice indexes into this
	boxes     []AABB    // Cached object boxes, filled at Build
	nodes     []bvhNode // nodes[0] is the root when the tree is non-empty
	leafItems []int32
	unbounded []int32
	bounds    AABB
	built     bool
	noPrune   bool // Skip box tests during traversal; results must not change
}

// NewBVH creates an empty BVH with the given config.
func NewBVH(config BVHConfig) (*BVH, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &BVH{config: config, bounds: EmptyAABB()}, nil
}

// BuildBVH creates a BVH over objects and builds it.
func BuildBVH(objects []*Object, config BVHConfig) (*BVH, error) {
	bvh, err := NewBVH(config)
	if err != nil {
		return nil, err
	}
	for _, obj := range objects {
		if err := bvh.Add(obj); err != nil {
			return nil, err
		}
	}
	if err := bvh.Build(); err != nil {
		return nil, err
	}
	return bvh, nil
}

// Config returns the config the BVH was created with.
func (b *BVH) Config() BVHConfig {
	return b.config
}

// Add stores an object for the next Build. It fails once the tree has been built.
func (b *BVH) Add(obj *Object) error {
	if obj == nil {
		return Invalidf("object must not be nil")
	}
	if b.built {
		return ErrAlreadyBuilt
	}
	b.objects = append(b.objects, obj)
	b.bounds = b.bounds.Union(obj.BoundingBox())
	return nil
}

// Build constructs the tree. Calling it again after success is a no-op.
func (b *BVH) Build() error {
	if b.built {
		return nil
	}
	if len(b.objects) == 0 {
		return ErrNoObjects
	}

	b.boxes = make([]AABB, len(b.objects))
	bounded := make([]int32, 0, len(b.objects))
	for i, obj := range b.objects {
		box := obj.BoundingBox()
		b.boxes[i] = box
		if box.IsFinite() {
			bounded = append(bounded, int32(i))
		} else {
			b.unbounded = append(b.unbounded, int32(i))
		}
	}

	if len(bounded) > 0 {
		b.nodes = make([]bvhNode, 0, 2*len(bounded)/b.config.LeafSize+1)
		b.leafItems = make([]int32, 0, len(bounded))
		b.buildNode(bounded, 0)
	}

	b.built = true
	return nil
}

// buildNode appends the node for items, recursing into its children, and returns its index.
func (b *BVH) buildNode(items []int32, depth int) int32 {
	box := EmptyAABB()
	for _, i := range items {
		box = box.Union(b.boxes[i])
	}

	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, bvhNode{box: box, left: -1, right: -1})

	if len(items) <= b.config.LeafSize || depth >= b.config.MaxDepth {
		b.nodes[idx].first = int32(len(b.leafItems))
		b.nodes[idx].count = int32(len(items))
		b.leafItems = append(b.leafItems, items...)
		return idx
	}

	axis := box.LongestAxis()
	leftItems, rightItems := b.split(items, box, axis)

	// Children are appended after the parent, so assign through the index, not a pointer.
	if len(leftItems) > 0 {
		left := b.buildNode(leftItems, depth+1)
		b.nodes[idx].left = left
	}
	if len(rightItems) > 0 {
		right := b.buildNode(rightItems, depth+1)
		b.nodes[idx].right = right
	}
	return idx
}

// split divides items in place according to the configured strategy. If the strategy
// leaves one side empty it falls back to an even split of the centroid-sorted items,
// so both sides are non-empty whenever len(items) >= 2.
func (b *BVH) split(items []int32, box AABB, axis int) ([]int32, []int32) {
	var left, right []int32
	switch b.config.Split {
	case SplitMedian:
		return b.evenSplit(items, axis)
	case SplitSAH:
		left, right = b.partitionSAH(items, axis)
	default:
		left, right = b.partition(items, axis, box.Centroid(axis))
	}

	if len(left) == 0 || len(right) == 0 {
		return b.evenSplit(items, axis)
	}
	return left, right
}

// partition moves every item whose centroid is at or below splitPos to the front.
func (b *BVH) partition(items []int32, axis int, splitPos float64) ([]int32, []int32) {
	mid := 0
	for i, item := range items {
		if b.boxes[item].Centroid(axis) <= splitPos {
			items[i], items[mid] = items[mid], items[i]
			mid++
		}
	}
	return items[:mid], items[mid:]
}

// evenSplit sorts items by centroid along axis and cuts the list in half.
func (b *BVH) evenSplit(items []int32, axis int) ([]int32, []int32) {
	sort.SliceStable(items, func(i, j int) bool {
		return b.boxes[items[i]].Centroid(axis) < b.boxes[items[j]].Centroid(axis)
	})
	mid := len(items) / 2
	return items[:mid], items[mid:]
}

// partitionSAH bins centroids along axis and splits at the cheapest bin boundary,
// with cost SA(left)*|left| + SA(right)*|right|.
func (b *BVH) partitionSAH(items []int32, axis int) ([]int32, []int32) {
	lo, hi := b.boxes[items[0]].Centroid(axis), b.boxes[items[0]].Centroid(axis)
	for _, item := range items[1:] {
		c := b.boxes[item].Centroid(axis)
		lo = min(lo, c)
		hi = max(hi, c)
	}
	if hi <= lo {
		return items, nil
	}

	binOf := func(item int32) int {
		bin := int(float64(sahBins) * (b.boxes[item].Centroid(axis) - lo) / (hi - lo))
		return min(bin, sahBins-1)
	}

	var counts [sahBins]int
	var boxes [sahBins]AABB
	for i := range boxes {
		boxes[i] = EmptyAABB()
	}
	for _, item := range items {
		bin := binOf(item)
		counts[bin]++
		boxes[bin] = boxes[bin].Union(b.boxes[item])
	}

	// Sweep from the right to get suffix areas, then from the left to price each cut.
	var rightArea [sahBins]float64
	var rightCount [sahBins]int
	acc, n := EmptyAABB(), 0
	for i := sahBins - 1; i > 0; i-- {
		acc = acc.Union(boxes[i])
		n += counts[i]
		rightArea[i] = acc.SurfaceArea()
		rightCount[i] = n
	}

	bestCut, bestCost := -1, 0.0
	acc, n = EmptyAABB(), 0
	for cut := 0; cut < sahBins-1; cut++ {
		acc = acc.Union(boxes[cut])
		n += counts[cut]
		if n == 0 || rightCount[cut+1] == 0 {
			continue
		}
		cost := acc.SurfaceArea()*float64(n) + rightArea[cut+1]*float64(rightCount[cut+1])
		if bestCut < 0 || cost < bestCost {
			bestCut, bestCost = cut, cost
		}
	}
	if bestCut < 0 {
		return items, nil
	}

	mid := 0
	for i, item := range items {
		if binOf(item) <= bestCut {
			items[i], items[mid] = items[mid], items[i]
			mid++
		}
	}
	return items[:mid], items[mid:]
}

// TraversalStats counts the work done by one query.
type TraversalStats struct {
	NodesVisited   int
	LeavesVisited  int
	PrimitiveTests int
}

func (s *TraversalStats) visit(leaf bool) {
	if s == nil {
		return
	}
	s.NodesVisited++
	if leaf {
		s.LeavesVisited++
	}
}

func (s *TraversalStats) test() {
	if s != nil {
		s.PrimitiveTests++
	}
}

// NearestHit returns the nearest hit in [tMin, tMax] across all objects.
func (b *BVH) NearestHit(ray Ray, tMin, tMax float64) (*Hit, error) {
	return b.nearestHit(ray, tMin, tMax, nil)
}

// NearestHitStats is NearestHit that also reports how much of the tree was visited.
func (b *BVH) NearestHitStats(ray Ray, tMin, tMax float64) (*Hit, TraversalStats, error) {
	var stats TraversalStats
	hit, err := b.nearestHit(ray, tMin, tMax, &stats)
	return hit, stats, err
}

func (b *BVH) nearestHit(ray Ray, tMin, tMax float64, stats *TraversalStats) (*Hit, error) {
	if !b.built {
		if len(b.objects) == 0 {
			return nil, ErrNoObjects
		}
		return nil, ErrNotBuilt
	}

	var closest *Hit
	closestSoFar := tMax

	for _, i := range b.unbounded {
		stats.test()
		if hit, ok := b.objects[i].HitTest(ray, tMin, closestSoFar); ok {
			closestSoFar = hit.Parameter()
			closest = hit
		}
	}

	if len(b.nodes) > 0 {
		if hit := b.hitNode(0, ray, tMin, closestSoFar, stats); hit != nil {
			closest = hit
		}
	}
	return closest, nil
}

// hitNode recursively tests ray intersection with BVH nodes
func (b *BVH) hitNode(idx int32, ray Ray, tMin, tMax float64, stats *TraversalStats) *Hit {
	node := &b.nodes[idx]
	if !b.noPrune && !node.box.Hit(ray, tMin, tMax) {
		return nil
	}
	stats.visit(node.isLeaf())

	var closest *Hit
	if node.isLeaf() {
		for _, i := range b.leafItems[node.first : node.first+node.count] {
			stats.test()
			if hit, ok := b.objects[i].HitTest(ray, tMin, tMax); ok {
				tMax = hit.Parameter()
				closest = hit
			}
		}
		return closest
	}

	// Visit the child the ray enters first so its hit can prune the other.
	first, second := node.left, node.right
	if first >= 0 && second >= 0 {
		t1, ok1 := b.nodes[first].box.Intersect(ray, tMin, tMax)
		t2, ok2 := b.nodes[second].box.Intersect(ray, tMin, tMax)
		if ok2 && (!ok1 || t2 < t1) {
			first, second = second, first
		}
	}

	for _, child := range [2]int32{first, second} {
		if child < 0 {
			continue
		}
		if hit := b.hitNode(child, ray, tMin, tMax, stats); hit != nil {
			tMax = hit.Parameter()
			closest = hit
		}
	}
	return closest
}

// Objects returns every added object in insertion order.
func (b *BVH) Objects() []*Object {
	out := make([]*Object, len(b.objects))
	copy(out, b.objects)
	return out
}

// BoundingBox returns the union of every object's box, unbounded ones included.
func (b *BVH) BoundingBox() AABB {
	return b.bounds
}

// BVHStats describes the shape of a built tree.
type BVHStats struct {
	Objects       int
	Unbounded     int
	Nodes         int
	Leaves        int
	MaxDepth      int
	MeanLeafDepth float64
	MeanLeafSize  float64
}

// Stats returns statistics about the BVH structure
func (b *BVH) Stats() BVHStats {
	stats := BVHStats{Objects: len(b.objects), Unbounded: len(b.unbounded), Nodes: len(b.nodes)}
	if len(b.nodes) == 0 {
		return stats
	}

	var depths, sizes []float64
	var walk func(idx int32, depth int)
	walk = func(idx int32, depth int) {
		node := &b.nodes[idx]
		stats.MaxDepth = max(stats.MaxDepth, depth)
		if node.isLeaf() {
			depths = append(depths, float64(depth))
			sizes = append(sizes, float64(node.count))
			return
		}
		for _, child := range [2]int32{node.left, node.right} {
			if child >= 0 {
				walk(child, depth+1)
			}
		}
	}
	walk(0, 0)

	stats.Leaves = len(depths)
	stats.MeanLeafDepth = stat.Mean(depths, nil)
	stats.MeanLeafSize = stat.Mean(sizes, nil)
	return stats
}

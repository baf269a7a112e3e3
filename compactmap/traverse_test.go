package compactmap

import (
	"reflect"
	"testing"

	"github.com/quakesoft/qse/geom"
)

// twoLeafMap builds a minimal map with one splitter node at x=0: leaf 0 is
// the front (x>0) side (node.Children[0]), leaf 1 is the back (x<0) side
// (node.Children[1]).
func twoLeafMap() *CompactMap {
	return &CompactMap{
		Nodes: []Node{
			{
				Plane:    geom.Plane{N: geom.Vec3{X: 1}, D: 0},
				Children: [2]uint32{LeafChild(0), LeafChild(1)},
			},
		},
		Leafs: []Leaf{{}, {}},
	}
}

func TestWalkBackToFrontOrdering(t *testing.T) {
	m := twoLeafMap()

	// Camera on the front (x>0) side: front is near, back is far, so the
	// far (back) leaf visits first.
	var order []int32
	WalkBackToFront(m, geom.Vec3{X: 5}, func(leaf int32) { order = append(order, leaf) })
	if want := []int32{1, 0}; !reflect.DeepEqual(order, want) {
		t.Errorf("camera on front side: order = %v, want %v", order, want)
	}

	// Camera on the back (x<0) side: near/far swap.
	order = nil
	WalkBackToFront(m, geom.Vec3{X: -5}, func(leaf int32) { order = append(order, leaf) })
	if want := []int32{0, 1}; !reflect.DeepEqual(order, want) {
		t.Errorf("camera on back side: order = %v, want %v", order, want)
	}
}

func TestWalkBackToFrontSingleLeaf(t *testing.T) {
	m := &CompactMap{Leafs: []Leaf{{}}}
	var order []int32
	WalkBackToFront(m, geom.Vec3{}, func(leaf int32) { order = append(order, leaf) })
	if want := []int32{0}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestLeafsOverlappingAABB(t *testing.T) {
	m := twoLeafMap()

	tests := []struct {
		name string
		box  geom.AABB3
		want []int32
	}{
		{
			name: "entirely in front leaf",
			box:  geom.AABB3{Min: geom.Vec3{X: 1, Y: -1, Z: -1}, Max: geom.Vec3{X: 2, Y: 1, Z: 1}},
			want: []int32{0},
		},
		{
			name: "entirely in back leaf",
			box:  geom.AABB3{Min: geom.Vec3{X: -2, Y: -1, Z: -1}, Max: geom.Vec3{X: -1, Y: 1, Z: 1}},
			want: []int32{1},
		},
		{
			name: "straddling both",
			box:  geom.AABB3{Min: geom.Vec3{X: -1, Y: -1, Z: -1}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}},
			want: []int32{0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int32
			LeafsOverlappingAABB(m, tt.box, func(leaf int32) { got = append(got, leaf) })
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LeafsOverlappingAABB(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

// chainMap builds a two-splitter chain: node 0 (plane x=0) branches to
// node 1 on its front side and leaf 2 on its back side; node 1 (plane
// y=0) branches to leaf 0 (front) and leaf 1 (back). A box straddling
// both planes exercises LeafsOverlappingAABBBounded's depth cap on the
// second (nested) straddle.
func chainMap() *CompactMap {
	return &CompactMap{
		Nodes: []Node{
			{
				Plane:    geom.Plane{N: geom.Vec3{X: 1}, D: 0},
				Children: [2]uint32{1, LeafChild(2)},
			},
			{
				Plane:    geom.Plane{N: geom.Vec3{Y: 1}, D: 0},
				Children: [2]uint32{LeafChild(0), LeafChild(1)},
			},
		},
		Leafs: []Leaf{{}, {}, {}},
	}
}

func TestLeafsOverlappingAABBBounded(t *testing.T) {
	m := chainMap()
	box := geom.AABB3{Min: geom.Vec3{X: -1, Y: -1, Z: -1}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}}

	tests := []struct {
		name     string
		maxDepth int
		want     []int32
	}{
		{"depth 0 stops at the first straddle's front side", 0, []int32{0}},
		{"depth 1 allows one nested straddle, caps the second", 1, []int32{0, 2}},
		{"depth 2 fully resolves both straddles", 2, []int32{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int32
			LeafsOverlappingAABBBounded(m, box, tt.maxDepth, func(leaf int32) { got = append(got, leaf) })
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LeafsOverlappingAABBBounded(maxDepth=%d) = %v, want %v", tt.maxDepth, got, tt.want)
			}
		})
	}
}

func TestLeafsOverlappingAABBSingleLeaf(t *testing.T) {
	m := &CompactMap{Leafs: []Leaf{{}}}
	var got []int32
	LeafsOverlappingAABB(m, geom.AABB3{}, func(leaf int32) { got = append(got, leaf) })
	if want := []int32{0}; !reflect.DeepEqual(got, want) {
		t.Errorf("got = %v, want %v", got, want)
	}
}

package tree

import (
	"iter"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

type rbNode[K any] struct {
	parent *rbNode[K] // Non-owning, only for walking up while rebalancing.
	left   *rbNode[K]
	right  *rbNode[K]
	key    K
	color  RBColor
}

func (node *rbNode[K]) Key() K {
	return node.key
}

func (node *rbNode[K]) Color() RBColor {
	return node.color
}

func (node *rbNode[K]) Left() RBNode[K] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K]) Right() RBNode[K] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[K]) Parent() RBNode[K] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

// Nil leaves are black.
func (node *rbNode[K]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K]) child(dir RBDirection) *rbNode[K] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] child of unknown direction")
}

func (node *rbNode[K]) setChild(dir RBDirection, child *rbNode[K]) {
	switch dir {
	case Left:
		node.left = child
	case Right:
		node.right = child
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] set child of unknown direction")
	}
	if child != nil {
		child.parent = node
	}
}

func (node *rbNode[K]) minimum() *rbNode[K] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K]) maximum() *rbNode[K] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

type rbTree[K any] struct {
	root      *rbNode[K]
	count     int64
	cmp       infra.KeyComparator[K]
	isDesc    bool
	observers []RBTreeObserver
}

func (tree *rbTree[K]) comparator() infra.KeyComparator[K] {
	return tree.cmp
}

func (tree *rbTree[K]) observe(event RBTreeEvent, n int64) {
	for _, o := range tree.observers {
		o.Observe(event, n)
	}
}

func (tree *rbTree[K]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K]) IsEmpty() bool {
	return tree.Len() == 0
}

func (tree *rbTree[K]) Root() RBNode[K] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// The longest path nodes' number is at most 2 * shortest path nodes' number,
// so the height never exceeds 2 * log2(n + 1).

/*
rotate(X, Left) promotes the right child S:

		 |                         |
		 X                         S
		/ \     rotate(X, Left)   / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

rotate(S, Right) is the mirror and undoes it.
*/
func (tree *rbTree[K]) rotate(x *rbNode[K], dir RBDirection) RBTreeEvent {
	if x == nil || (dir != Left && dir != Right) {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate nil node or unknown direction")
	}
	y := x.child(dir.opposite())
	if y == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate node without child to promote")
	}

	p, xDir := x.parent, x.Direction()
	x.setChild(dir.opposite(), y.child(dir))
	y.setChild(dir, x)

	switch xDir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
	}
	y.parent = p

	if dir == Left {
		return EventRotateLeft
	}
	return EventRotateRight
}

// search descends from the root without touching the tree. It returns the
// node holding key, or the last visited node with the side key belongs to.
func (tree *rbTree[K]) search(key K) (found bool, anchor *rbNode[K], dir RBDirection) {
	dir = Root
	for x := tree.root; x != nil; {
		anchor = x
		res := tree.cmp(key, x.key)
		if /* equal */ res == 0 {
			return true, x, Root
		} else /* less */ if res < 0 {
			dir, x = Left, x.left
		} else /* greater */ {
			dir, x = Right, x.right
		}
	}
	return false, anchor, dir
}

func (tree *rbTree[K]) Contains(key K) bool {
	found, _, _ := tree.search(key)
	return found
}

// rbEvents buffers the events of one insertion. Observers see them only
// after the tree is balanced again.
type rbEvents struct {
	enabled bool
	events  []RBTreeEvent
}

func (e *rbEvents) add(event RBTreeEvent) {
	if e.enabled {
		e.events = append(e.events, event)
	}
}

// Insert attaches a new red node under the anchor found by search.
// All comparisons happen before the first mutation, so a panicking
// comparator leaves the tree as it was.
// i1: Empty rbtree, the new node becomes the root and is painted black
// by the rebalance tail.
func (tree *rbTree[K]) Insert(key K) bool {
	found, y, dir := tree.search(key)
	if found {
		tree.observe(EventDuplicate, 1)
		return false
	}

	z := &rbNode[K]{
		key:   key,
		color: Red,
	}
	switch dir {
	case /* i1 */ Root:
		tree.root = z
	case Left, Right:
		y.setChild(dir, z)
	default:
	}

	atomic.AddInt64(&tree.count, 1)
	events := &rbEvents{enabled: len(tree.observers) > 0}
	events.add(EventInsert)
	tree.insertRebalance(z, events)
	for _, event := range events.events {
		tree.observe(event, 1)
	}
	return true
}

type insertCase uint8

const (
	caseUncleRed insertCase = iota
	caseZigZag
	caseStraight
)

// classify is only called on a red-violation, the parent is red so it is
// never the root and the grandpa exists.
func classify[K any](x *rbNode[K]) (insertCase, RBDirection) {
	side := x.parent.Direction()
	if uncle := x.parent.parent.child(side.opposite()); uncle.isRed() {
		return caseUncleRed, side
	}
	if x.Direction() != side {
		return caseZigZag, side
	}
	return caseStraight, side
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im3: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Continue to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to P's own direction so X takes
P's place, then P is the current node and im5 applies.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: Current node is the same direction as parent. Repaint and rotate G
away from the line. Nothing above G changes color, so the loop stops.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

The root is painted black at the end whether the loop ran or not.
*/
func (tree *rbTree[K]) insertRebalance(x *rbNode[K], events *rbEvents) {
	for !x.isRoot() && x.parent.isRed() {
		c, side := classify(x)
		p, gp := x.parent, x.parent.parent
		switch c {
		case /* im3 */ caseUncleRed:
			p.color = Black
			gp.child(side.opposite()).color = Black
			gp.color = Red
			events.add(EventRecolor)
			x = gp
			continue
		case /* im4 */ caseZigZag:
			events.add(tree.rotate(p, side))
			p = x // X took P's place.
			fallthrough
		case /* im5 */ caseStraight:
			p.color = Black
			gp.color = Red
			events.add(tree.rotate(gp, side.opposite()))
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate unknown case")
		}
		break
	}
	tree.root.color = Black
}

func (tree *rbTree[K]) Min() (K, bool) {
	if n := tree.root.minimum(); n != nil {
		return n.key, true
	}
	var k K
	return k, false
}

func (tree *rbTree[K]) Max() (K, bool) {
	if n := tree.root.maximum(); n != nil {
		return n.key, true
	}
	var k K
	return k, false
}

type rbLevel[K any] struct {
	node  *rbNode[K]
	depth int
}

// Height counts the nodes on the longest root to nil path.
func (tree *rbTree[K]) Height() int {
	if tree.root == nil {
		return 0
	}
	height := 0
	stack := []rbLevel[K]{{tree.root, 1}}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux.depth > height {
			height = aux.depth
		}
		if aux.node.left != nil {
			stack = append(stack, rbLevel[K]{aux.node.left, aux.depth + 1})
		}
		if aux.node.right != nil {
			stack = append(stack, rbLevel[K]{aux.node.right, aux.depth + 1})
		}
	}
	return height
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K]) Foreach(action func(idx int64, color RBColor, key K) bool) {
	size := tree.Len()
	aux := tree.root
	if size <= 0 || aux == nil {
		return
	}

	stack := make([]*rbNode[K], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		tree.Foreach(func(_ int64, _ RBColor, key K) bool {
			return yield(key)
		})
	}
}

func (tree *rbTree[K]) Keys() []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(_ int64, _ RBColor, key K) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Clear unlinks every node exactly once with an explicit stack, so deep
// trees never grow the call stack. Node handles obtained before Clear keep
// their key and color but lose all their relations.
func (tree *rbTree[K]) Clear() {
	aux := tree.root
	tree.root = nil
	if aux == nil {
		atomic.StoreInt64(&tree.count, 0)
		return
	}

	stack := make([]*rbNode[K], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)

	released := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.parent, aux.left, aux.right = nil, nil, nil
		released++
	}
	atomic.StoreInt64(&tree.count, 0)
	tree.observe(EventClear, released)
}

type RBTreeOpt[K any] func(*rbTree[K])

func WithRBTreeDesc[K any]() RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.isDesc = true
	}
}

func WithRBTreeObserver[K any](obs RBTreeObserver) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		if obs == nil {
			return
		}
		tree.observers = append(tree.observers, obs)
	}
}

func NewRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) RBTree[K] {
	return NewRBTreeFunc[K](infra.OrderedCompare[K], opts...)
}

// NewRBTreeFunc builds a tree over any key type ordered by cmp.
// cmp has to be a strict total order, see infra.LessComparator.
func NewRBTreeFunc[K any](cmp infra.KeyComparator[K], opts ...RBTreeOpt[K]) RBTree[K] {
	if cmp == nil {
		panic("[rbtree] nil key comparator")
	}
	return newRBTree(cmp, opts...)
}

func newRBTree[K any](cmp infra.KeyComparator[K], opts ...RBTreeOpt[K]) *rbTree[K] {
	tree := &rbTree[K]{
		cmp: cmp,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.isDesc {
		tree.cmp = infra.ReverseComparator(cmp)
	}
	return tree
}

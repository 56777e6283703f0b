package tree

import (
	"math"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

func isBlack[K any](node RBNode[K]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K any](node RBNode[K]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[K any](target, to RBNode[K]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K any](tree RBTree[K]) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	stack := make([]RBNode[K], 0, tree.Len()>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; isRed[K](aux) {
			if isRed[K](aux.Left()) || isRed[K](aux.Right()) {
				return infra.NewErrorStack("rbtree red violation")
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

func RootColorValidate[K any](tree RBTree[K]) error {
	if root := tree.Root(); root != nil && root.Color() != Black {
		return infra.NewErrorStack("rbtree root is not black")
	}
	return nil
}

// BFS traversal to load all nodes owning at least one nil leaf.
func bfsLeaves[K any](tree RBTree[K]) []RBNode[K] {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	leaves := make([]RBNode[K], 0, tree.Len()>>1+1)
	queue := make([]RBNode[K], 0, tree.Len()>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		queue = queue[1:]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K any](tree RBTree[K]) error {
	leaves := bfsLeaves[K](tree)
	if leaves == nil {
		return nil
	}

	depths := lo.Map(leaves, func(leaf RBNode[K], _ int) int {
		return blackDepthTo[K](leaf, tree.Root())
	})
	if len(lo.Uniq(depths)) != 1 {
		return infra.NewErrorStack("rbtree black violation")
	}
	return nil
}

type comparatorOwner[K any] interface {
	comparator() infra.KeyComparator[K]
}

// OrderViolationValidate checks the inorder keys are strictly ascending
// by the tree's own comparator, duplicates included.
func OrderViolationValidate[K any](tree RBTree[K]) error {
	owner, ok := tree.(comparatorOwner[K])
	if !ok {
		return infra.NewErrorStack("rbtree without comparator to validate order")
	}
	cmp := owner.comparator()

	var (
		prev    K
		hasPrev bool
		err     error
	)
	tree.Foreach(func(idx int64, color RBColor, key K) bool {
		if hasPrev && cmp(prev, key) >= 0 {
			err = infra.NewErrorStack("rbtree order violation")
			return false
		}
		prev, hasPrev = key, true
		return true
	})
	return err
}

func HeightBoundValidate[K any](tree RBTree[K]) error {
	n := tree.Len()
	if n <= 0 {
		if tree.Height() != 0 {
			return infra.NewErrorStack("rbtree empty but has height")
		}
		return nil
	}
	if float64(tree.Height()) > 2*math.Log2(float64(n+1)) {
		return infra.NewErrorStack("rbtree height exceeds 2*log2(n+1)")
	}
	return nil
}

// Validate collects every violation at once.
func Validate[K any](tree RBTree[K]) error {
	return infra.WrapErrorStackWithMessage(multierr.Combine(
		RootColorValidate(tree),
		RedViolationValidate(tree),
		BlackViolationValidate(tree),
		OrderViolationValidate(tree),
		HeightBoundValidate(tree),
	), "rbtree invalid")
}

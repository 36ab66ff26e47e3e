package tree

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/list"
	"go.uber.org/multierr"

	"github.com/benz9527/xwavl/lib/infra"
)

var (
	errWAVLRankViolation   = errors.New("wavl rank violation")
	errWAVLSizeViolation   = errors.New("wavl size violation")
	errWAVLHeightViolation = errors.New("wavl height violation")
	errWAVLOrderViolation  = errors.New("wavl key order violation")
	errWAVLLinkViolation   = errors.New("wavl parent link violation")
)

// wavl rule validation utilities.

// Preorder traversal over the real nodes by the read-only views.
func preorder[K infra.OrderedKey, V any](tree WAVLTree[K, V], action func(node WAVLNode[K, V]) error) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	stack := make([]WAVLNode[K, V], 0, root.Height()+2)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)

	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if err := action(aux); err != nil {
			return err
		}
		if r := aux.Right(); r.IsReal() {
			stack = append(stack, r)
		}
		if l := aux.Left(); l.IsReal() {
			stack = append(stack, l)
		}
	}
	return nil
}

// RankViolationValidate checks every rank difference is 1 or 2 and no
// leaf is a 2,2 leaf.
func RankViolationValidate[K infra.OrderedKey, V any](tree WAVLTree[K, V]) error {
	return preorder[K, V](tree, func(node WAVLNode[K, V]) error {
		l, r := node.Left(), node.Right()
		dl, dr := node.Rank()-l.Rank(), node.Rank()-r.Rank()
		if dl < 1 || dl > 2 || dr < 1 || dr > 2 {
			return fmt.Errorf("%w: key %v rank %d has rank differences (%d,%d)",
				errWAVLRankViolation, node.Key(), node.Rank(), dl, dr)
		}
		if !l.IsReal() && !r.IsReal() && node.Rank() != 0 {
			return fmt.Errorf("%w: leaf key %v has rank %d",
				errWAVLRankViolation, node.Key(), node.Rank())
		}
		return nil
	})
}

func SizeViolationValidate[K infra.OrderedKey, V any](tree WAVLTree[K, V]) error {
	return preorder[K, V](tree, func(node WAVLNode[K, V]) error {
		if expected := 1 + node.Left().SubtreeSize() + node.Right().SubtreeSize(); node.SubtreeSize() != expected {
			return fmt.Errorf("%w: key %v size %d, expected %d",
				errWAVLSizeViolation, node.Key(), node.SubtreeSize(), expected)
		}
		return nil
	})
}

func HeightViolationValidate[K infra.OrderedKey, V any](tree WAVLTree[K, V]) error {
	return preorder[K, V](tree, func(node WAVLNode[K, V]) error {
		if expected := 1 + max(node.Left().Height(), node.Right().Height()); node.Height() != expected {
			return fmt.Errorf("%w: key %v height %d, expected %d",
				errWAVLHeightViolation, node.Key(), node.Height(), expected)
		}
		return nil
	})
}

// OrderViolationValidate checks the children link back to their parent
// and the in-order keys strictly follow the tree order.
func OrderViolationValidate[K infra.OrderedKey, V any](tree WAVLTree[K, V]) error {
	err := preorder[K, V](tree, func(node WAVLNode[K, V]) error {
		for _, child := range []WAVLNode[K, V]{node.Left(), node.Right()} {
			if !child.IsReal() {
				continue
			}
			if p := child.Parent(); p == nil || p.Key() != node.Key() {
				return fmt.Errorf("%w: child key %v of key %v", errWAVLLinkViolation, child.Key(), node.Key())
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	keys := tree.Keys()
	if int64(len(keys)) != tree.Len() {
		return fmt.Errorf("%w: %d keys visited, tree len %d", errWAVLOrderViolation, len(keys), tree.Len())
	}
	if len(keys) == 0 {
		return nil
	}
	asc := keys[0] < keys[len(keys)-1]
	for i := 1; i < len(keys); i++ {
		if keys[i-1] == keys[i] || (keys[i-1] < keys[i]) != asc {
			return fmt.Errorf("%w: key %v before key %v", errWAVLOrderViolation, keys[i-1], keys[i])
		}
	}
	return nil
}

// Validate runs all the wavl rule validations and combines the violations.
func Validate[K infra.OrderedKey, V any](tree WAVLTree[K, V]) error {
	return multierr.Combine(
		RankViolationValidate[K, V](tree),
		SizeViolationValidate[K, V](tree),
		HeightViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree),
	)
}

// Dump writes the tree for debugging, one node per line as key, rank
// and the rank differences to its children, left child first.
func Dump[K infra.OrderedKey, V any](w io.Writer, tree WAVLTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		_, err := fmt.Fprintln(w, "size 0")
		return err
	}

	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedLight)
	var dump func(node WAVLNode[K, V])
	dump = func(node WAVLNode[K, V]) {
		left, right := node.Left(), node.Right()
		l.AppendItem(fmt.Sprintf("%v r%d (%d,%d)",
			node.Key(), node.Rank(), node.Rank()-left.Rank(), node.Rank()-right.Rank()))
		if !left.IsReal() && !right.IsReal() {
			return
		}
		l.Indent()
		for _, child := range []WAVLNode[K, V]{left, right} {
			if child.IsReal() {
				dump(child)
			}
		}
		l.UnIndent()
	}
	dump(root)
	_, err := fmt.Fprintf(w, "size %d height %d\n%s\n", tree.Len(), root.Height(), l.Render())
	return err
}

package tree

/*
A new node X is a rank 0 leaf, a 1,1 node. Only the edge from X to its
parent P can be broken, with rank difference 0 (P is a 0-child parent).
Rn: rank n. (a,b): rank differences of a node to its left, right child.

im1 (promote): P is 0,1. Promote P. P may become a 0-child of its parent,
so continue from P. Repeats up to the root at worst.

	    P R1                 P R2
	   /    \    promote    /    \
	X R1    S R0  =====>  X R1    S R0

im2 (single rotation): P is 0,2 and X is 1,2 with its outer child at 1.
Rotate X above P and demote P. Terminal.

	       P R3                     X R3
	      /    \                   /    \
	   X R3     S R1  rotate(X)  A R2    P R2
	  /    \          ========>         /    \
	A R2    B R1                      B R1    S R1

im3 (double rotation): P is 0,2 and X is 2,1 with its inner child B at 1.
Rotate B above X then above P, promote B, demote X and P. Terminal.

	       P R3                          B R3
	      /    \                       /      \
	   X R3     S R1  rotate(B) x2   X R2      P R2
	  /    \          ============> /   \     /    \
	A R1    B R2                  A R1  Bl   Br    S R1
	       /    \
	     Bl      Br
*/
func (tree *wavlTree[K, V]) insertRebalance(x nodeIdx) (steps int) {
	for p := tree.node(x).parent; p != virtualIdx; p = tree.node(x).parent {
		if tree.rankDiff(p, x) != 0 {
			return steps
		}

		s := tree.sibling(p, x)
		switch ds := tree.rankDiff(p, s); ds {
		case /* im1 */ 1:
			tree.promote(p)
			steps++
			x = p
			continue
		case 2:
		default:
			// impossible run to here
			panic( /* debug assertion */ "[wavl] insert violate, sibling rank difference out of {1, 2}")
		}

		var inner nodeIdx
		switch dir := tree.direction(x); dir {
		case Left:
			inner = tree.node(x).right
		case Right:
			inner = tree.node(x).left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[wavl] insert violate, 0-child without direction")
		}

		if /* im2 */ tree.rankDiff(x, inner) == 2 {
			tree.rotateUp(x)
			tree.demote(p)
			tree.updateNodeSizeAndHeight(p)
			tree.updateNodeSizeAndHeight(x)
			tree.updateSizeAndHeightFromNode(tree.node(x).parent)
			return steps + 2
		}

		/* im3 */
		tree.rotateUp(inner)
		tree.rotateUp(inner)
		tree.promote(inner)
		tree.demote(x)
		tree.demote(p)
		tree.updateNodeSizeAndHeight(x)
		tree.updateNodeSizeAndHeight(p)
		tree.updateNodeSizeAndHeight(inner)
		tree.updateSizeAndHeightFromNode(tree.node(inner).parent)
		return steps + 5
	}
	return steps
}

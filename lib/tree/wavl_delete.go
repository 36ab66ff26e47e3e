package tree

/*
r1: Z has two real children. Move the key and value of its successor S
(the leftmost node of the right subtree) into Z, then remove S instead.
S has no left child.

	  |                      |
	  Z                      S
	 / \    move(S, Z)      / \
	L   ..  =========>     L   ..
	    |                      |
	    P                      P
	   / \                    / \
	  S   ..                 Sr  ..
	   \
	    Sr

r2: Z has at most one real child C. C (or the virtual node) takes the slot
of Z under its parent P. If Z was the root, C becomes the root, nothing
to rebalance. Otherwise rebalance from the pair (P, C).
*/
func (tree *wavlTree[K, V]) removeNode(z nodeIdx) (steps int) {
	if /* r1 */ zn := tree.node(z); zn.left != virtualIdx && zn.right != virtualIdx {
		s := tree.minimum(zn.right)
		sn := tree.node(s)
		zn.key, zn.val = sn.key, sn.val
		z = s
	}

	/* r2 */
	zn := tree.node(z)
	c := zn.left
	if c == virtualIdx {
		c = zn.right
	}
	p := zn.parent
	tree.replaceChild(p, z, c)
	tree.arena.release(z)

	if p == virtualIdx {
		return 0
	}
	tree.updateSizeAndHeightFromNode(p)
	return tree.removeRebalance(p, c)
}

/*
X is the child slot (maybe virtual) under P that lost one rank.
Rn: rank n. (a,b): rank differences of a node to its left, right child.

rm0 (2,2 leaf): P lost its last child and is a rank 1 leaf, a 2,2 leaf.
Demote P and continue from P.

rm1 (demote): X is a 3-child and its sibling S is a 2-child. Demote P,
continue from P.

	    P R4                P R3
	   /    \    demote    /    \
	X R1    S R2  =====>  X R1   S R2

rm2 (double demote): X is a 3-child, S is a 1-child and S is 2,2.
Demote P and S, continue from P.

	    P R4                     P R3
	   /    \                   /    \
	X R1     S R3  demote x2  X R1    S R2
	        /    \  =======>         /    \
	      A R1   B R1              A R1   B R1

rm3 (single rotation): X is a 3-child, S is a 1-child whose outer child
B is a 1-child. Rotate S above P, S takes the rank of P, P takes the
rank of S. If P turns into a 2,2 leaf, demote it once more. Terminal.

	    P R4                          S R4
	   /    \                        /    \
	X R1     S R3    rotate(S)    P R3     B R2
	        /    \   ========>   /    \
	      A R1    B R2         X R1   A R1

rm4 (double rotation): X is a 3-child, S is a 1-child whose outer child
B is a 2-child and inner child A is a 1-child. Rotate A above S then
above P. A takes rank of P, P and S take the rank of A. Terminal.

	    P R4                           A R4
	   /    \                        /      \
	X R1     S R3   rotate(A) x2   P R2      S R2
	        /    \  ============> /    \    /    \
	      A R2   B R1            X R1  Al  Ar    B R1
	     /    \
	   Al      Ar
*/
func (tree *wavlTree[K, V]) removeRebalance(p, x nodeIdx) (steps int) {
	for p != virtualIdx {
		if /* rm0 */ tree.isLeaf(p) {
			if tree.rank(p) == 0 {
				return steps
			}
			tree.demote(p)
			steps++
			x, p = p, tree.node(p).parent
			continue
		}

		if tree.rankDiff(p, x) != 3 {
			return steps
		}

		s := tree.sibling(p, x)
		switch ds := tree.rankDiff(p, s); ds {
		case /* rm1 */ 2:
			tree.demote(p)
			steps++
			x, p = p, tree.node(p).parent
			continue
		case 1:
		default:
			// impossible run to here
			panic( /* debug assertion */ "[wavl] remove violate, sibling rank difference out of {1, 2}")
		}

		var inner, outer nodeIdx
		switch dir := tree.direction(s); dir {
		case Left:
			inner, outer = tree.node(s).right, tree.node(s).left
		case Right:
			inner, outer = tree.node(s).left, tree.node(s).right
		default:
			// impossible run to here
			panic( /* debug assertion */ "[wavl] remove violate, sibling without direction")
		}

		if /* rm2 */ tree.rankDiff(s, inner) == 2 && tree.rankDiff(s, outer) == 2 {
			tree.demote(p)
			tree.demote(s)
			steps += 2
			x, p = p, tree.node(p).parent
			continue
		}

		if /* rm3 */ tree.rankDiff(s, outer) == 1 {
			tree.rotateUp(s)
			tree.promote(s)
			tree.demote(p)
			steps += 3
			if tree.isLeaf(p) {
				tree.demote(p)
				steps++
			}
			tree.updateNodeSizeAndHeight(p)
			tree.updateNodeSizeAndHeight(s)
			tree.updateSizeAndHeightFromNode(tree.node(s).parent)
			return steps
		}

		/* rm4 */
		tree.rotateUp(inner)
		tree.rotateUp(inner)
		tree.node(inner).rank += 2
		tree.demote(s)
		tree.node(p).rank -= 2
		steps += 5
		tree.updateNodeSizeAndHeight(p)
		tree.updateNodeSizeAndHeight(s)
		tree.updateNodeSizeAndHeight(inner)
		tree.updateSizeAndHeightFromNode(tree.node(inner).parent)
		return steps
	}
	return steps
}

package engine

// levelTree is a red-black tree of price levels keyed by price. It backs the
// Book's ordered index: ascending traversal yields prices low to high,
// descending high to low. Standard CLRS rotations with a shared black
// sentinel.

type treeColor uint8

const (
	red   treeColor = 0
	black treeColor = 1
)

type treeNode struct {
	price  int64
	lvl    *level
	color  treeColor
	left   *treeNode
	right  *treeNode
	parent *treeNode
}

type levelTree struct {
	root *treeNode
	nil_ *treeNode // sentinel, always black
	size int
}

func newLevelTree() *levelTree {
	s := &treeNode{color: black}
	return &levelTree{root: s, nil_: s}
}

func (t *levelTree) len() int { return t.size }

// find returns the level at an exact price, or nil.
func (t *levelTree) find(price int64) *level {
	n := t.root
	for n != t.nil_ {
		switch {
		case price < n.price:
			n = n.left
		case price > n.price:
			n = n.right
		default:
			return n.lvl
		}
	}
	return nil
}

// upsert returns the level at price, creating it if absent.
func (t *levelTree) upsert(price int64) *level {
	y := t.nil_
	x := t.root
	for x != t.nil_ {
		y = x
		switch {
		case price < x.price:
			x = x.left
		case price > x.price:
			x = x.right
		default:
			return x.lvl
		}
	}

	lvl := &level{price: price}
	z := &treeNode{price: price, lvl: lvl, color: red, left: t.nil_, right: t.nil_, parent: y}
	if y == t.nil_ {
		t.root = z
	} else if price < y.price {
		y.left = z
	} else {
		y.right = z
	}
	t.insertFixup(z)
	t.size++
	return lvl
}

// delete removes the level at price. Returns false if no such level exists.
func (t *levelTree) delete(price int64) bool {
	z := t.search(price)
	if z == t.nil_ {
		return false
	}
	t.deleteNode(z)
	t.size--
	return true
}

// ascend visits levels in increasing price order until fn returns false.
// The successor node is resolved before fn runs, so fn may delete the level
// it is visiting.
func (t *levelTree) ascend(fn func(*level) bool) {
	for n := t.minNode(t.root); n != t.nil_; {
		nxt := t.next(n)
		if !fn(n.lvl) {
			return
		}
		n = nxt
	}
}

// descend visits levels in decreasing price order until fn returns false.
func (t *levelTree) descend(fn func(*level) bool) {
	for n := t.maxNode(t.root); n != t.nil_; {
		prv := t.prev(n)
		if !fn(n.lvl) {
			return
		}
		n = prv
	}
}

func (t *levelTree) search(price int64) *treeNode {
	n := t.root
	for n != t.nil_ {
		switch {
		case price < n.price:
			n = n.left
		case price > n.price:
			n = n.right
		default:
			return n
		}
	}
	return t.nil_
}

func (t *levelTree) minNode(n *treeNode) *treeNode {
	if n == t.nil_ {
		return t.nil_
	}
	for n.left != t.nil_ {
		n = n.left
	}
	return n
}

func (t *levelTree) maxNode(n *treeNode) *treeNode {
	if n == t.nil_ {
		return t.nil_
	}
	for n.right != t.nil_ {
		n = n.right
	}
	return n
}

func (t *levelTree) next(n *treeNode) *treeNode {
	if n == nil || n == t.nil_ {
		return t.nil_
	}
	if n.right != t.nil_ {
		return t.minNode(n.right)
	}
	p := n.parent
	for p != t.nil_ && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *levelTree) prev(n *treeNode) *treeNode {
	if n == nil || n == t.nil_ {
		return t.nil_
	}
	if n.left != t.nil_ {
		return t.maxNode(n.left)
	}
	p := n.parent
	for p != t.nil_ && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

func (t *levelTree) leftRotate(x *treeNode) {
	y := x.right
	x.right = y.left
	if y.left != t.nil_ {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nil_ {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *levelTree) rightRotate(y *treeNode) {
	x := y.left
	y.left = x.right
	if x.right != t.nil_ {
		x.right.parent = y
	}
	x.parent = y.parent
	if y.parent == t.nil_ {
		t.root = x
	} else if y == y.parent.right {
		y.parent.right = x
	} else {
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

func (t *levelTree) insertFixup(z *treeNode) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			u := z.parent.parent.right
			if u.color == red {
				z.parent.color = black
				u.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rightRotate(z.parent.parent)
			}
		} else {
			u := z.parent.parent.left
			if u.color == red {
				z.parent.color = black
				u.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.leftRotate(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *levelTree) transplant(u, v *treeNode) {
	if u.parent == t.nil_ {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *levelTree) deleteNode(z *treeNode) {
	y := z
	yColor := y.color
	var x *treeNode

	if z.left == t.nil_ {
		x = z.right
		t.transplant(z, z.right)
	} else if z.right == t.nil_ {
		x = z.left
		t.transplant(z, z.left)
	} else {
		y = t.minNode(z.right)
		yColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yColor == black {
		t.deleteFixup(x)
	}
}

func (t *levelTree) deleteFixup(x *treeNode) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}

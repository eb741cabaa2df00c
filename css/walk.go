package css

import "slices"

// WalkFunc is called for every node visited by Walk. If an error is returned,
// traversal stops and Walk returns it.
type WalkFunc func(n Node) error

// Walk visits n and every node reachable from it exactly once in document
// order, a node before its descendants (pre-order, depth first). Children of
// a container are taken before descending, so nodes inserted into the same
// container during a visit are not visited.
func Walk(n Node, fn WalkFunc) error {
	if err := fn(n); err != nil {
		return err
	}
	c, ok := n.(Container)
	if !ok {
		return nil
	}
	for _, child := range slices.Clone(c.Children()) {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// WalkDecls calls fn for every declaration under n in document order.
func WalkDecls(n Node, fn func(d *Decl) error) error {
	return Walk(n, func(n Node) error {
		if d, ok := n.(*Decl); ok {
			return fn(d)
		}
		return nil
	})
}

package wad

// PointInSubSector walks the BSP tree to the subsector containing (x, y).
// It returns nil for a level without node data.
func (l *Level) PointInSubSector(x, y float64) *SubSector {
	member := l.RootNode
	for member != nil {
		switch v := member.(type) {
		case *SubSector:
			return v
		case *Node:
			member = v.Child(v.PointOnSide(x, y))
		}
	}
	return nil
}

// PointOnSide returns 0 if the point is on the right (front) of the
// partition line, 1 if it is on the left.
func (n *Node) PointOnSide(x, y float64) int {
	if n.DX == 0 {
		if x <= n.X {
			return boolToSide(n.DY > 0)
		}
		return boolToSide(n.DY < 0)
	}
	if n.DY == 0 {
		if y <= n.Y {
			return boolToSide(n.DX < 0)
		}
		return boolToSide(n.DX > 0)
	}

	dx := x - n.X
	dy := y - n.Y
	left := n.DY * dx
	right := dy * n.DX
	if right < left {
		return 0 // front side
	}
	return 1 // back side
}

func boolToSide(b bool) int {
	if b {
		return 1
	}
	return 0
}

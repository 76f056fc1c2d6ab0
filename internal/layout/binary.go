package layout

// Binary tiles children by recursive bisection: the children list is split at
// the point that best balances the two halves' summed values, and the
// rectangle is cut across its longer side in proportion. Children keep their
// input order.
func Binary(parent *Node, x0, y0, x1, y1 float64) {
	nodes := parent.Children
	n := len(nodes)
	if n == 0 {
		return
	}

	// sums[i] is the total value of nodes[:i]
	sums := make([]float64, n+1)
	for i, node := range nodes {
		sums[i+1] = sums[i] + node.Value
	}

	var partition func(i, j int, value, x0, y0, x1, y1 float64)
	partition = func(i, j int, value, x0, y0, x1, y1 float64) {
		if i >= j-1 {
			node := nodes[i]
			node.X0, node.Y0, node.X1, node.Y1 = x0, y0, x1, y1
			return
		}

		valueOffset := sums[i]
		valueTarget := value/2 + valueOffset
		k, hi := i+1, j-1
		for k < hi {
			mid := int(uint(k+hi) >> 1)
			if sums[mid] < valueTarget {
				k = mid + 1
			} else {
				hi = mid
			}
		}
		if valueTarget-sums[k-1] < sums[k]-valueTarget && i+1 < k {
			k--
		}

		valueLeft := sums[k] - valueOffset
		valueRight := value - valueLeft

		if x1-x0 > y1-y0 {
			xk := x1
			if value != 0 {
				xk = (x0*valueRight + x1*valueLeft) / value
			}
			partition(i, k, valueLeft, x0, y0, xk, y1)
			partition(k, j, valueRight, xk, y0, x1, y1)
		} else {
			yk := y1
			if value != 0 {
				yk = (y0*valueRight + y1*valueLeft) / value
			}
			partition(i, k, valueLeft, x0, y0, x1, yk)
			partition(k, j, valueRight, x0, yk, x1, y1)
		}
	}

	// Branch values are the sum of their children, so sums[n] == parent.Value
	partition(0, n, sums[n], x0, y0, x1, y1)
}

package stats

import (
	"bufio"
	"fmt"
	"io"
)

// Write renders one block per result, in order. Each block starts with a
// "# op(field)" header line; count rows are "value\tcount", set rows are one
// value per line and scalars are a single line.
func Write(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	for _, res := range results {
		fmt.Fprintf(bw, "# %s\n", res.Pair)
		switch res.Pair.Op {
		case Count:
			for _, g := range res.Groups {
				fmt.Fprintf(bw, "%s\t%d\n", g.Value, g.Count)
			}
		case Set:
			for _, v := range res.Values {
				fmt.Fprintln(bw, v)
			}
		default:
			fmt.Fprintln(bw, res.Scalar.String())
		}
	}
	return bw.Flush()
}

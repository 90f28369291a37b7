package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/benz9527/xrbtree/lib/tree"
)

var (
	demoInsertKeys = []int{12, 5, 19, 1, 7, 13, 30, 6, 35}
	demoRemoveKeys = []int{5, 1, 2, 3, 4, 7}
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replay the insert and remove reference scenarios",
	Long: `
	demo inserts 12 5 19 1 7 13 30 6 35, prints the nodes in order with
	their colors and removes the absent key 4. Then it builds a tree of
	5 1 2 3 4 7 and removes 3. The tree is validated after every step.
	Run with --log-level debug to trace the rebalancing cases.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDemo(cmd.OutOrStdout())
	},
}

func newDemoTree(out io.Writer, keys []int) (tree.RBTree[int, int], error) {
	rbt := tree.NewRBTree[int, int](
		tree.WithRBTreeLogger[int, int](logger),
		tree.WithRBTreeInvariantCheck[int, int](),
	)
	for _, k := range keys {
		if _, _, err := rbt.Put(k, k); err != nil {
			return nil, err
		}
	}
	_, _ = fmt.Fprintf(out, "insert %v\n", keys)
	_, _ = fmt.Fprintf(out, "nodes  %s\n", rbt.String())
	return rbt, tree.Validate(rbt)
}

func inOrderKeys(rbt tree.RBTree[int, int]) []int {
	keys := make([]int, 0, rbt.Len())
	for k := range rbt.InOrder() {
		keys = append(keys, k)
	}
	return keys
}

func demoRemove(out io.Writer, rbt tree.RBTree[int, int], key int) error {
	_, removed, err := rbt.Remove(key)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "remove %d: removed=%t len=%d in-order=%v\n", key, removed, rbt.Len(), inOrderKeys(rbt))
	return tree.Validate(rbt)
}

func runDemo(out io.Writer) error {
	rbt, err := newDemoTree(out, demoInsertKeys)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "root   %d (%s)\n", rbt.Root().Key(), rbt.Root().Color())
	if err = demoRemove(out, rbt, 4); err != nil {
		return err
	}

	if rbt, err = newDemoTree(out, demoRemoveKeys); err != nil {
		return err
	}
	if err = demoRemove(out, rbt, 3); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "nodes  %s\n", rbt.String())
	return nil
}

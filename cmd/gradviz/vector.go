package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezoic/gradviz/vector"
)

func newVectorCommand(a *app) *cobra.Command {
	names := make([]string, len(vector.Ops))
	for i, op := range vector.Ops {
		names[i] = string(op)
	}

	return &cobra.Command{
		Use:       "vector OP X,Y,Z X,Y,Z",
		Short:     "Apply a vector operation to two 3-vectors",
		Long:      "Apply one of " + strings.Join(names, ", ") + " to two vectors. Use -- before vectors with a leading minus sign.",
		Args:      cobra.ExactArgs(3),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := vector.Parse(args[1])
			if err != nil {
				return err
			}
			v, err := vector.Parse(args[2])
			if err != nil {
				return err
			}
			res, err := vector.Apply(vector.Op(args[0]), u, v)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, res)
			return nil
		},
	}
}

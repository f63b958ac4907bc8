/*
 * check.go, part of msmcells.
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"fmt"

	"github.com/rmera/msmcells/cells"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check DIR",
	Short: "Check an output directory",
	Long: `Verifies that the representative structures, the cell file, the weights and
the folded/unfolded lists in DIR are consistent with each other.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout := cells.NewLayout(args[0])
		n, _ := cmd.Flags().GetInt("samples")
		nstates, _ := cmd.Flags().GetInt("states")
		if nstates <= 0 {
			w, err := cells.ReadWeights(layout.Weights)
			if err != nil {
				return err
			}
			nstates = len(w)
		}
		R, err := cells.Check(layout, n, nstates)
		out := cmd.OutOrStdout()
		if R != nil {
			for _, p := range R.Problems {
				fmt.Fprintln(out, "problem:", p)
			}
			fmt.Fprintf(out, "%d macrostates, %d cells, %d centers, %d duplicated samples\n", nstates, R.Cells, R.Centers, R.Duplicates)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntP("samples", "n", 0, "Representative structures per macrostate")
	checkCmd.Flags().Int("states", 0, "Number of macrostates (default: the number of weights)")
	checkCmd.MarkFlagRequired("samples")
}

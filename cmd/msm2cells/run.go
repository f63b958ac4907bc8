/*
 * run.go, part of msmcells.
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

	"github.com/rmera/msmcells/pipeline"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the upstream tools and extract the cells",
	Long: `Runs featurization, decomposition, clustering and MSM fitting, each one
reading the output of the previous, and then extracts the cells. Stages can be
skipped with --skip when their outputs already exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		C, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		R, err := pipeline.New(C, log).Run(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, R)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addConfigFlags(runCmd.Flags(), true)
}

func printResult(cmd *cobra.Command, R *pipeline.Result) error {
	A := R.Assignment
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d cells (%d folded, %d unfolded), %d empty and %d padded macrostates, population entropy %.4f\n",
		len(A.States), len(A.Folded), len(A.Unfolded), len(R.Samples.Empty), len(R.Samples.Padded), R.Entropy)
	return err
}

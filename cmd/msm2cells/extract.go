/*
 * extract.go, part of msmcells.
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
	"github.com/rmera/msmcells/pipeline"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the cells from an existing model",
	Long: `Reads the model, the cluster labels, the reduced coordinates and the
cluster centroids, and writes the representative structures, the centers, the
cell file, the folded/unfolded lists and the weights.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		C, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		R, err := pipeline.New(C, log).Extract(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, R)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addConfigFlags(extractCmd.Flags(), false)
}

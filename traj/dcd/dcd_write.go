/*
 * dcd_write.go, part of msmcells.
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

package dcd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	v3 "github.com/rmera/msmcells/v3"
)

// DCDWObj is a CHARMM/NAMD binary trajectory open for writing.
type DCDWObj struct {
	natoms   int
	frames   int32
	writable bool
	filename string
	cell     bool
	f        *os.File
	w        *bufio.Writer
	fields   [3][]float32
}

// NewWriter creates the DCD file name for frames of natoms atoms, and writes
// its header. If cell is true, each frame carries the lengths of the box given
// to WNext (or zeros).
func NewWriter(name string, natoms int, cell bool) (*DCDWObj, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("%d atoms per frame", natoms), name, []string{"NewWriter"}, true}
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	D := &DCDWObj{natoms: natoms, filename: name, cell: cell, f: f, w: bufio.NewWriter(f)}
	for i := range D.fields {
		D.fields[i] = make([]float32, natoms)
	}
	if err := D.header(); err != nil {
		f.Close()
		return nil, Error{err.Error(), name, []string{"header", "NewWriter"}, true}
	}
	D.writable = true
	return D, nil
}

func (D *DCDWObj) put(data ...any) error {
	for _, v := range data {
		if err := binary.Write(D.w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func (D *DCDWObj) header() error {
	var ctrl [20]int32
	ctrl[2] = 1 //steps between frames
	if D.cell {
		ctrl[cCell] = 1
	}
	ctrl[cVersion] = 24
	title := make([]byte, 2*titleLen)
	copy(title, "REMARKS WRITTEN WITH MSMCELLS")
	for i := len("REMARKS WRITTEN WITH MSMCELLS"); i < len(title); i++ {
		title[i] = ' '
	}
	tsize := int32(4 + len(title))
	//The time step (ctrl[9]) is a float32, 1.0
	ctrl[9] = int32(math.Float32bits(1))
	return D.put(int32(84), []byte("CORD"), ctrl, int32(84),
		tsize, int32(2), title, tsize,
		int32(4), int32(D.natoms), int32(4))
}

// Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int {
	return D.natoms
}

// WNext writes the coordinates in towrite as the next frame. If the trajectory
// was created with a unit cell, the box, a 3x3 matrix in row-major order, gives
// its lengths.
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIniWrite, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil || towrite.NVecs() != D.natoms {
		return Error{"coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	for i := 0; i < D.natoms; i++ {
		for j := range D.fields {
			D.fields[j][i] = float32(towrite.At(i, j))
		}
	}
	size := int32(4 * D.natoms)
	if D.cell {
		c := cellSize(box...)
		if err := D.put(int32(48), [6]float64{c[0], 90, c[1], 90, 90, c[2]}, int32(48)); err != nil {
			return Error{err.Error(), D.filename, []string{"binary.Write", "WNext"}, true}
		}
	}
	for _, f := range D.fields {
		if err := D.put(size, f, size); err != nil {
			return Error{err.Error(), D.filename, []string{"binary.Write", "WNext"}, true}
		}
	}
	D.frames++
	return nil
}

// Close writes the number of frames in the header and closes the file.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	defer D.f.Close()
	if err := D.w.Flush(); err != nil {
		return Error{err.Error(), D.filename, []string{"Flush", "Close"}, true}
	}
	//the frame count is right after the first marker and the magic number.
	if _, err := D.f.Seek(8, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"Seek", "Close"}, true}
	}
	if err := binary.Write(D.f, binary.LittleEndian, D.frames); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Write", "Close"}, true}
	}
	if err := D.f.Close(); err != nil {
		return Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}

// cellSize returns the lengths of a box given as a 3x3 matrix in row-major
// order, or 0s if there is no box.
func cellSize(box ...[]float64) [3]float64 {
	if len(box) == 0 || len(box[0]) < 9 {
		return [3]float64{}
	}
	b := box[0]
	var ret [3]float64
	for i := 0; i < 3; i++ {
		ret[i] = math.Sqrt(b[3*i]*b[3*i] + b[3*i+1]*b[3*i+1] + b[3*i+2]*b[3*i+2])
	}
	return ret
}


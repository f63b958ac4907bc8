/*
 * dcd.go, part of msmcells.
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

// Package dcd reads and writes CHARMM/NAMD binary trajectories.
package dcd

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	chem "github.com/rmera/msmcells"
	v3 "github.com/rmera/msmcells/v3"
)

const titleLen = 80

// The control block after the "CORD" magic holds 20 int32 values.
const (
	cNSet    = 0
	cFixed   = 8
	cCell    = 10
	cFourDim = 11
	cVersion = 19
)

// DCDObj is a CHARMM/NAMD binary trajectory open for reading.
// Only trajectories without fixed atoms are supported.
type DCDObj struct {
	natoms   int
	nframes  int //as declared in the header, often 0 in unfinished files
	readable bool
	filename string
	cell     bool //each frame starts with the unit cell
	fourdim  bool
	endian   binary.ByteOrder
	f        *os.File
	r        *bufio.Reader
	fields   [3][]float32
	cellbuf  [6]float64
}

// New opens the DCD file name for reading, and reads its header.
// Both byte orders are accepted.
func New(name string) (*DCDObj, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Open", "New"}, true}
	}
	D := &DCDObj{filename: name, f: f, r: bufio.NewReader(f), endian: binary.LittleEndian}
	if err := D.header(); err != nil {
		f.Close()
		return nil, err
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

func (D *DCDObj) fail(msg, caller string) Error {
	return Error{msg, D.filename, []string{caller}, true}
}

// marker reads a record length marker.
func (D *DCDObj) marker() (int32, error) {
	var m int32
	err := binary.Read(D.r, D.endian, &m)
	return m, err
}

// record reads a full record into dst, checking the markers around it.
func (D *DCDObj) record(dst any, size int32) error {
	m, err := D.marker()
	if err != nil {
		return err
	}
	if m != size {
		return fmt.Errorf("record of %d bytes, expected %d", m, size)
	}
	if err := binary.Read(D.r, D.endian, dst); err != nil {
		return err
	}
	if m, err = D.marker(); err != nil {
		return err
	} else if m != size {
		return fmt.Errorf("record closed with %d, expected %d", m, size)
	}
	return nil
}

func (D *DCDObj) header() error {
	var first [4]byte
	if _, err := io.ReadFull(D.r, first[:]); err != nil {
		return D.fail(err.Error(), "header")
	}
	if binary.LittleEndian.Uint32(first[:]) != 84 {
		if binary.BigEndian.Uint32(first[:]) != 84 {
			return D.fail(WrongFormat, "header")
		}
		D.endian = binary.BigEndian
	}
	var magic [4]byte
	var ctrl [20]int32
	if err := binary.Read(D.r, D.endian, &magic); err != nil {
		return D.fail(err.Error(), "header")
	}
	if string(magic[:]) != "CORD" {
		return D.fail(WrongFormat+": no CORD magic", "header")
	}
	if err := binary.Read(D.r, D.endian, &ctrl); err != nil {
		return D.fail(err.Error(), "header")
	}
	if m, err := D.marker(); err != nil || m != 84 {
		return D.fail(WrongFormat, "header")
	}
	if ctrl[cVersion] == 0 {
		return D.fail("X-plor DCD not supported", "header")
	}
	if ctrl[cFixed] != 0 {
		return D.fail("fixed atoms not supported", "header")
	}
	D.nframes = int(ctrl[cNSet])
	D.cell = ctrl[cCell] != 0
	D.fourdim = ctrl[cFourDim] != 0
	//Titles.
	size, err := D.marker()
	if err != nil || size < 4 || (size-4)%titleLen != 0 {
		return D.fail(WrongFormat+": bad title block", "header")
	}
	if _, err := D.r.Discard(int(size)); err != nil {
		return D.fail(err.Error(), "header")
	}
	if m, err := D.marker(); err != nil || m != size {
		return D.fail(WrongFormat+": bad title block", "header")
	}
	var natoms int32
	if err := D.record(&natoms, 4); err != nil {
		return D.fail(err.Error(), "header")
	}
	if natoms <= 0 {
		return D.fail(fmt.Sprintf("%d atoms in trajectory", natoms), "header")
	}
	D.natoms = int(natoms)
	return nil
}

// Readable returns true if the trajectory can still be read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *DCDObj) Len() int {
	return D.natoms
}

// NFrames returns the number of frames declared in the header. Programs that
// crashed while writing the trajectory may leave it as 0.
func (D *DCDObj) NFrames() int {
	return D.nframes
}

/*Next reads the next frame into keep, or skips it if keep is nil. If the trajectory
has a unit cell and a box is given, the lengths of the cell are put in the diagonal
of box[0], which must have 9 elements. After the last frame, it returns a
chem.LastFrameError.*/
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return D.fail(TrajUnIniRead, "Next")
	}
	if keep != nil && keep.NVecs() != D.natoms {
		return D.fail(fmt.Sprintf("%s: %d atoms in trajectory, %d in matrix", WrongFormat, D.natoms, keep.NVecs()), "Next")
	}
	if _, err := D.r.Peek(1); errors.Is(err, io.EOF) {
		D.Close()
		return newlastFrameError(D.filename, "Next")
	}
	size := int32(4 * D.natoms)
	if D.cell {
		if err := D.record(&D.cellbuf, 48); err != nil {
			D.Close()
			return D.fail(ReadError+": "+err.Error(), "Next")
		}
		if len(box) > 0 && len(box[0]) >= 9 {
			//CHARMM order: A, gamma, B, beta, alpha, C
			box[0][0], box[0][4], box[0][8] = D.cellbuf[0], D.cellbuf[2], D.cellbuf[5]
		}
	}
	for i := range D.fields {
		if err := D.record(D.fields[i], size); err != nil {
			D.Close()
			return D.fail(ReadError+": "+err.Error(), "Next")
		}
	}
	if _, err := D.r.Peek(1); D.fourdim && err == nil {
		//some programs leave out the fourth dimension in the last frame.
		m, err := D.marker()
		if err == nil {
			err = D.skip(m)
		}
		if err != nil {
			D.Close()
			return D.fail(ReadError+": "+err.Error(), "Next")
		}
	}
	if keep == nil {
		return nil
	}
	for i := 0; i < D.natoms; i++ {
		keep.Set(i, 0, float64(D.fields[0][i]))
		keep.Set(i, 1, float64(D.fields[1][i]))
		keep.Set(i, 2, float64(D.fields[2][i]))
	}
	return nil
}

func (D *DCDObj) skip(size int32) error {
	if _, err := D.r.Discard(int(size)); err != nil {
		return err
	}
	m, err := D.marker()
	if err == nil && m != size {
		err = fmt.Errorf("record closed with %d, expected %d", m, size)
	}
	return err
}

// Close closes the file. The trajectory can't be read afterwards.
func (D *DCDObj) Close() {
	if D.f != nil {
		D.f.Close()
		D.f = nil
	}
	D.readable = false
}

//Errors

// Error is the general structure for DCD trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "dcd") associated to the error
func (err Error) Format() string { return "dcd" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	WrongFormat    = "Wrong format in the DCD file or frame"
)

// lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "dcd" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) lastFrameError {
	return lastFrameError{fileName: filename, deco: []string{caller}}
}

var _ chem.LastFrameError = lastFrameError{}
var _ chem.TrajCloser = &DCDObj{}

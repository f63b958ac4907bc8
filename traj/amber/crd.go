/*
 * crd.go, part of msmcells.
 *
 * Copyright 2018 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

// Package amber reads ASCII Amber trajectories (mdcrd/crd).
package amber

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	chem "github.com/rmera/msmcells"
	v3 "github.com/rmera/msmcells/v3"
)

// Each value in an mdcrd file takes 8 columns (F8.3), 10 values per line.
const fieldWidth = 8

// CrdObj is a handle to an ASCII Amber trajectory. Box lines, if present,
// are detected automatically. It implements chem.TrajCloser.
type CrdObj struct {
	natoms     int
	readable   bool
	filename   string
	ioread     *os.File
	crd        *bufio.Reader
	pending    string //a line read but not consumed
	hasPending bool
}

// New opens the Amber trajectory filename, with ats atoms per frame.
func New(filename string, ats int) (*CrdObj, error) {
	var err error
	if ats <= 0 {
		return nil, Error{fmt.Sprintf("Invalid number of atoms %d", ats), filename, []string{"New"}, true}
	}
	C := new(CrdObj)
	C.ioread, err = os.Open(filename)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), filename, []string{"New"}, true}
	}
	C.filename = filename
	C.crd = bufio.NewReader(C.ioread)
	_, err = C.crd.ReadString('\n') //The first line is just a title
	if err != nil {
		C.ioread.Close()
		return nil, Error{"Can't read title: " + err.Error(), filename, []string{"New"}, true}
	}
	C.natoms = ats
	C.readable = true
	return C, nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (C *CrdObj) Readable() bool {
	return C.readable
}

func (C *CrdObj) line() (string, error) {
	if C.hasPending {
		C.hasPending = false
		return C.pending, nil
	}
	l, err := C.crd.ReadString('\n')
	if err == io.EOF && len(l) > 0 {
		err = nil
	}
	return strings.TrimRight(l, "\r\n"), err
}

// fields splits an mdcrd line in its fixed-width values.
func fields(l string) ([]float64, error) {
	ret := make([]float64, 0, 10)
	for i := 0; i < len(l); i += fieldWidth {
		end := i + fieldWidth
		if end > len(l) {
			end = len(l)
		}
		f := strings.TrimSpace(l[i:end])
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// Next reads the next frame of the trajectory and puts it in keep. A nil keep
// discards the frame. If the frame is followed by a box line and a box slice is given,
// the box lengths are put in the diagonal of the box vectors.
func (C *CrdObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !C.readable {
		return Error{TrajUnIni, C.filename, []string{"Next"}, true}
	}
	if keep != nil && keep.NVecs() != C.natoms {
		return Error{fmt.Sprintf("Matrix with %d vectors given, but the trajectory has %d atoms", keep.NVecs(), C.natoms), C.filename, []string{"Next"}, true}
	}
	need := 3 * C.natoms
	got := 0
	for got < need {
		l, err := C.line()
		if err != nil {
			if err == io.EOF && got == 0 {
				C.Close()
				return newlastFrameError(C.filename, "Next")
			}
			return Error{fmt.Sprintf("%s: %s after %d values", ReadError, err.Error(), got), C.filename, []string{"Next"}, true}
		}
		vals, err := fields(l)
		if err != nil {
			return Error{"Unable to read coordinates: " + err.Error(), C.filename, []string{"strconv.ParseFloat", "Next"}, true}
		}
		if got+len(vals) > need {
			return Error{WrongFormat + ": frame with too many values", C.filename, []string{"Next"}, true}
		}
		for _, v := range vals {
			if keep != nil {
				keep.Set(got/3, got%3, v)
			}
			got++
		}
	}
	//a line with exactly 3 values after a frame is a box line, unless a frame
	//also starts with 3 values, which only happens with a single atom.
	l, err := C.line()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return Error{ReadError + ": " + err.Error(), C.filename, []string{"Next"}, true}
	}
	vals, err := fields(l)
	if err == nil && len(vals) == 3 && need > 3 {
		if len(box) > 0 && len(box[0]) >= 9 {
			for i := range box[0][:9] {
				box[0][i] = 0
			}
			box[0][0], box[0][4], box[0][8] = vals[0], vals[1], vals[2]
		}
		return nil
	}
	C.pending = l
	C.hasPending = true
	return nil
}

// Close closes the file and marks the object as unreadable.
func (C *CrdObj) Close() {
	if !C.readable {
		return
	}
	C.ioread.Close()
	C.readable = false
}

// Len returns the number of atoms per frame.
func (C *CrdObj) Len() int {
	return C.natoms
}

//Errors

// Error is the general structure for Crd trajectory errors. It fullfills  chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("Amber trajectory file %s error: %s", err.filename, err.message)
}

func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Format() string { return "mdcrd" }

func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIni    = "Traj object uninitialized to read"
	ReadError    = "Error reading frame"
	UnableToOpen = "Unable to open file"
	WrongFormat  = "Wrong format in the trajectory file or frame"
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

func (E lastFrameError) Format() string { return "mdcrd" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) lastFrameError {
	return lastFrameError{fileName: filename, deco: []string{caller}}
}

var _ chem.TrajCloser = &CrdObj{}

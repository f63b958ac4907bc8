/*
 * errors.go, part of msmcells.
 *
 * Copyright 2017 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package chem

import (
	"errors"
	"fmt"
	"strings"
)

// CError is the general error type of the chem package. It implements Error.
type CError struct {
	msg      string
	deco     []string
	critical bool
}

// NewError returns a critical CError with the given message, decorated
// with caller.
func NewError(msg, caller string) CError {
	return CError{msg: msg, deco: []string{caller}, critical: true}
}

func (err CError) Error() string {
	if len(err.deco) == 0 {
		return err.msg
	}
	return fmt.Sprintf("%s (%s)", err.msg, strings.Join(err.deco, ": "))
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored.
func (err CError) Critical() bool { return err.critical }

// ErrDecorate decorates err with the caller's name if it implements Error,
// and returns it unchanged otherwise.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
	}
	return err
}

// IsLastFrame returns true if err only signals the normal end of a trajectory.
func IsLastFrame(err error) bool {
	var l LastFrameError
	return errors.As(err, &l)
}

// lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
	format   string
}

// NormalLastFrameTermination does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return E.format }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename, format, caller string) lastFrameError {
	return lastFrameError{deco: []string{caller}, fileName: filename, format: format}
}

const (
	ErrNilCoords    = "Given nil coordinates"
	ErrCoordsAtoms  = "Number of coordinates and atoms do not match"
	ErrEmptySet     = "Empty set of atoms"
	ErrNotReadable  = "Trajectory not ready to be read"
	ErrUnknownFile  = "Unknown structure file format"
	ErrSVDFailed    = "SVD decomposition failed"
	ErrNoCommonSize = "Structures have different number of atoms"
)

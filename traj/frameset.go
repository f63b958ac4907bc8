/*
 * frameset.go, part of msmcells.
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

package traj

import (
	"errors"
	"fmt"

	chem "github.com/rmera/msmcells"
	v3 "github.com/rmera/msmcells/v3"
)

// ErrFrameOutOfRange is returned when a frame beyond the end of a trajectory is requested.
var ErrFrameOutOfRange = errors.New("frame out of range")

// FrameSet gives access to the frames of a set of trajectories sharing
// one topology. Frames are read sequentially, so requests in increasing order
// are cheap; asking for an earlier frame reopens the trajectory.
// A FrameSet is not safe for concurrent use.
type FrameSet struct {
	top     chem.Atomer
	names   []string
	open    func(name string, natoms int) (chem.TrajCloser, error)
	cur     chem.TrajCloser
	curTraj int
	next    int //index of the next frame cur will return
}

// NewFrameSet returns a FrameSet over the trajectories in names, in that order,
// with the topology top.
func NewFrameSet(top chem.Atomer, names []string) *FrameSet {
	return &FrameSet{top: top, names: names, open: Open, curTraj: -1}
}

// Atoms returns the topology shared by all the trajectories.
func (F *FrameSet) Atoms() chem.Atomer {
	return F.top
}

// Len returns the number of trajectories in the set.
func (F *FrameSet) Len() int {
	return len(F.names)
}

// Name returns the file name of the trajectory with index traj.
func (F *FrameSet) Name(traj int) string {
	return F.names[traj]
}

// Frame puts the coordinates of the given frame of the given trajectory in dst.
func (F *FrameSet) Frame(traj, frame int, dst *v3.Matrix) error {
	if traj < 0 || traj >= len(F.names) {
		return fmt.Errorf("trajectory %d of %d: %w", traj, len(F.names), ErrFrameOutOfRange)
	}
	if frame < 0 {
		return fmt.Errorf("frame %d of %s: %w", frame, F.names[traj], ErrFrameOutOfRange)
	}
	if F.cur == nil || F.curTraj != traj || frame < F.next {
		F.Close()
		t, err := F.open(F.names[traj], F.top.Len())
		if err != nil {
			return err
		}
		F.cur = t
		F.curTraj = traj
		F.next = 0
	}
	for F.next < frame {
		if err := F.read(nil); err != nil {
			return err
		}
	}
	return F.read(dst)
}

func (F *FrameSet) read(dst *v3.Matrix) error {
	err := F.cur.Next(dst)
	if err != nil {
		name, n := F.names[F.curTraj], F.next
		F.Close()
		if chem.IsLastFrame(err) {
			return fmt.Errorf("%s has only %d frames: %w", name, n, ErrFrameOutOfRange)
		}
		return fmt.Errorf("reading frame %d of %s: %w", n, name, err)
	}
	F.next++
	return nil
}

// Close releases the currently open trajectory, if any.
func (F *FrameSet) Close() {
	if F.cur != nil {
		F.cur.Close()
	}
	F.cur = nil
	F.curTraj = -1
	F.next = 0
}

/*
 * files.go, part of msmcells.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	v3 "github.com/rmera/msmcells/v3"
)

//PDB_read family

// This tries to guess a chemical element symbol from a PDB atom name. Mostly based on AMBER names.
// It only deals with some common bio-elements.
func symbolFromName(name string) (string, error) {
	symbol := ""
	if len(name) == 0 {
		return "", fmt.Errorf("Empty atom name")
	}
	if len(name) == 4 || name[0] == 'H' || (name[0] >= '0' && name[0] <= '9') { //I thiiink only Hs can have 4-char names in amber.
		symbol = "H"
	} else if name[0] == 'C' {
		switch name {
		case "CU":
			symbol = "Cu"
		case "CO":
			symbol = "Co"
		case "CL":
			symbol = "Cl"
		default:
			symbol = "C"
		}
	} else if name[0] == 'N' {
		if name == "NA" {
			symbol = "Na"
		} else {
			symbol = "N"
		}
	} else if name[0] == 'O' {
		symbol = "O"
	} else if name[0] == 'P' {
		symbol = "P"
	} else if name[0] == 'S' {
		if name == "SE" {
			symbol = "Se"
		} else {
			symbol = "S"
		}
	} else if strings.HasPrefix(name, "ZN") {
		symbol = "Zn"
	}
	if symbol == "" {
		return symbol, fmt.Errorf("Couldn't guess symbol from PDB name %s", name)
	}
	return symbol, nil
}

// readPDBCoords parses the coordinates and b-factor of a valid ATOM or HETATM line.
func readPDBCoords(line string, c []float64) (float64, error) {
	var err error
	fields := [3][2]int{{30, 38}, {38, 46}, {46, 54}}
	for i, f := range fields {
		c[i], err = strconv.ParseFloat(strings.TrimSpace(line[f[0]:f[1]]), 64)
		if err != nil {
			return 0, err
		}
	}
	var bfactor float64
	if len(line) >= 66 {
		//a missing b-factor is not an error.
		bfactor, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	return bfactor, nil
}

// readPDBAtom parses a valid ATOM or HETATM line of a PDB file, returns an Atom
// object with the info except for the coordinates, which are put in c, and the b-factor, which is
// returned.
func readPDBAtom(line string, c []float64) (*Atom, error) {
	var err error
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, err = strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		return nil, err
	}
	atom.Name = strings.TrimSpace(line[12:16])
	atom.MolName = strings.TrimSpace(line[17:20])
	atom.MolName1 = three2OneLetter[atom.MolName]
	atom.Chain = strings.TrimSpace(line[21:22])
	atom.MolID, err = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return nil, err
	}
	atom.Bfactor, err = readPDBCoords(line, c)
	if err != nil {
		return nil, err
	}
	atom.Occupancy = 1.0
	if len(line) >= 60 {
		if occ, err := strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64); err == nil {
			atom.Occupancy = occ
		}
	}
	//we try to read the element only if it is there, otherwise
	//we guess it from the atom name. No error checking for the guess.
	if len(line) >= 78 {
		atom.Symbol = strings.TrimSpace(line[76:78])
		if len(atom.Symbol) == 2 {
			atom.Symbol = atom.Symbol[:1] + strings.ToLower(atom.Symbol[1:])
		}
	}
	if atom.Symbol == "" {
		atom.Symbol, _ = symbolFromName(atom.Name)
	}
	atom.Mass = symbolMass[atom.Symbol]
	return atom, nil
}

// PDBFileRead reads the PDB file with name pdbname, returning a Molecule with as many frames
// as MODELs were in the file.
func PDBFileRead(pdbname string) (*Molecule, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, NewError(err.Error(), "PDBFileRead")
	}
	defer pdbfile.Close()
	mol, err := PDBRead(pdbfile)
	if err != nil {
		return nil, NewError(fmt.Sprintf("%s: %s", pdbname, err.Error()), "PDBFileRead")
	}
	return mol, nil
}

// PDBRead reads the atomic entries for a PDB stream. All the models present must contain
// the same atoms. The atom info is taken from the first model only.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	ats := make([]*Atom, 0, 100)
	coords := [][]float64{make([]float64, 0, 300)}
	bfactors := [][]float64{make([]float64, 0, 100)}
	first := true  //are we reading the first model? if not we only save coordinates
	ended := false //we have found an ENDMDL and no atom afterwards.
	c := make([]float64, 3)
	scanner := bufio.NewScanner(pdb)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	contlines := 0
	for scanner.Scan() {
		line := scanner.Text()
		contlines++
		if strings.HasPrefix(line, "END") && !strings.HasPrefix(line, "ENDMDL") {
			break
		}
		if strings.HasPrefix(line, "ENDMDL") {
			ended = true
			continue
		}
		if !(strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")) {
			continue
		}
		if len(line) < 54 {
			return nil, fmt.Errorf("line %d too short for an atom record", contlines)
		}
		if ended {
			first = false
			ended = false
			coords = append(coords, make([]float64, 0, len(ats)*3))
			bfactors = append(bfactors, make([]float64, 0, len(ats)))
		}
		var bfac float64
		var err error
		if first {
			var at *Atom
			at, err = readPDBAtom(line, c)
			if at != nil {
				bfac = at.Bfactor
				ats = append(ats, at)
			}
		} else {
			bfac, err = readPDBCoords(line, c)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", contlines, err)
		}
		last := len(coords) - 1
		coords[last] = append(coords[last], c...)
		bfactors[last] = append(bfactors[last], bfac)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(ats) == 0 {
		return nil, fmt.Errorf("%s", ErrEmptySet)
	}
	mcoords := make([]*v3.Matrix, len(coords))
	for i, v := range coords {
		if len(v) != 3*len(ats) {
			return nil, fmt.Errorf("model %d has %d atoms, expected %d", i+1, len(v)/3, len(ats))
		}
		mcoords[i], _ = v3.NewMatrix(v) //can't fail, we checked the size.
	}
	return NewMolecule(NewTopology(ats), mcoords, bfactors)
}

// PDBFileWrite writes the coordinates coords, with the atoms in mol, to a PDB file with name pdbname.
// bfact can be nil.
func PDBFileWrite(pdbname string, coords *v3.Matrix, mol Atomer, bfact []float64) error {
	out, err := os.Create(pdbname)
	if err != nil {
		return NewError(err.Error(), "PDBFileWrite")
	}
	if err = PDBWrite(out, coords, mol, bfact); err != nil {
		out.Close()
		return ErrDecorate(err, "PDBFileWrite")
	}
	if err = out.Close(); err != nil {
		return NewError(err.Error(), "PDBFileWrite")
	}
	return nil
}

// PDBWrite writes a single frame in PDB format to out.
func PDBWrite(out io.Writer, coords *v3.Matrix, mol Atomer, bfact []float64) error {
	if coords == nil {
		return NewError(ErrNilCoords, "PDBWrite")
	}
	if coords.NVecs() != mol.Len() || (bfact != nil && len(bfact) != mol.Len()) {
		return NewError(ErrCoordsAtoms, "PDBWrite")
	}
	w := bufio.NewWriter(out)
	fmt.Fprint(w, "REMARK     WRITTEN WITH MSMCELLS\n")
	chainprev := ""
	if mol.Len() > 0 {
		chainprev = mol.Atom(0).Chain
	}
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if at.Chain != chainprev {
			fmt.Fprintln(w, "TER")
			chainprev = at.Chain
		}
		first := "ATOM"
		if at.Het {
			first = "HETATM"
		}
		bf := at.Bfactor
		if bfact != nil {
			bf = bfact[i]
		}
		chain := at.Chain
		if chain == "" {
			chain = " "
		}
		var formatstring string
		if len(at.Name) < 4 {
			formatstring = "%-6s%5d  %-3s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n"
		} else {
			formatstring = "%-6s%5d %4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n"
		}
		_, err := fmt.Fprintf(w, formatstring, first, at.ID%100000, at.Name, at.MolName, chain[:1],
			at.MolID%10000, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), at.Occupancy, bf, at.Symbol)
		if err != nil {
			return NewError(err.Error(), "PDBWrite")
		}
	}
	fmt.Fprint(w, "END\n")
	if err := w.Flush(); err != nil {
		return NewError(err.Error(), "PDBWrite")
	}
	return nil
}

//End PDB family

// XYZFileRead reads a (possibly multi-frame) xyz file.
func XYZFileRead(xyzname string) (*Molecule, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, NewError(err.Error(), "XYZFileRead")
	}
	defer xyzfile.Close()
	mol, err := XYZRead(xyzfile)
	if err != nil {
		return nil, NewError(fmt.Sprintf("%s: %s", xyzname, err.Error()), "XYZFileRead")
	}
	return mol, nil
}

// XYZRead reads a (possibly multi-frame) xyz stream. The atoms are taken
// from the first frame.
func XYZRead(xyz io.Reader) (*Molecule, error) {
	scanner := bufio.NewScanner(xyz)
	var ats []*Atom
	var coords []*v3.Matrix
	for scanner.Scan() {
		header := strings.TrimSpace(scanner.Text())
		if header == "" {
			continue
		}
		frame := len(coords)
		natoms, err := strconv.Atoi(header)
		if err != nil {
			return nil, fmt.Errorf("Ill formatted XYZ file, frame %d: %w", frame, err)
		}
		if ats != nil && natoms != len(ats) {
			return nil, fmt.Errorf("frame %d has %d atoms, expected %d", frame, natoms, len(ats))
		}
		scanner.Scan() //We dont care about the comment line
		c := make([]float64, natoms*3)
		for i := 0; i < natoms; i++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("frame %d truncated at atom %d", frame, i)
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 4 {
				return nil, fmt.Errorf("Line number %d in frame %d ill formed", i, frame)
			}
			for j := 0; j < 3; j++ {
				c[i*3+j], err = strconv.ParseFloat(fields[j+1], 64)
				if err != nil {
					return nil, fmt.Errorf("frame %d atom %d: %w", frame, i, err)
				}
			}
			if frame == 0 {
				at := &Atom{Symbol: fields[0], Name: fields[0], ID: i + 1, Occupancy: 1.0}
				at.Mass = symbolMass[at.Symbol]
				ats = append(ats, at)
			}
		}
		m, err := v3.NewMatrix(c)
		if err != nil {
			return nil, err
		}
		coords = append(coords, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(ats) == 0 {
		return nil, fmt.Errorf("%s", ErrEmptySet)
	}
	return NewMolecule(NewTopology(ats), coords, nil)
}

// XYZFileWrite writes the coords with atoms mol in an XYZ file with name xyzname which will
// be created for that. If the file exist it will be overwritten.
func XYZFileWrite(xyzname string, coords *v3.Matrix, mol Atomer) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return NewError(err.Error(), "XYZFileWrite")
	}
	if err = XYZWrite(out, coords, mol); err != nil {
		out.Close()
		return ErrDecorate(err, "XYZFileWrite")
	}
	if err = out.Close(); err != nil {
		return NewError(err.Error(), "XYZFileWrite")
	}
	return nil
}

// XYZWrite writes a single xyz frame to out.
func XYZWrite(out io.Writer, coords *v3.Matrix, mol Atomer) error {
	if coords == nil {
		return NewError(ErrNilCoords, "XYZWrite")
	}
	if coords.NVecs() != mol.Len() {
		return NewError(ErrCoordsAtoms, "XYZWrite")
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%-4d\n\n", mol.Len())
	for i := 0; i < mol.Len(); i++ {
		fmt.Fprintf(w, "%-2s  %12.6f%12.6f%12.6f \n", mol.Atom(i).Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
	}
	if err := w.Flush(); err != nil {
		return NewError(err.Error(), "XYZWrite")
	}
	return nil
}

// FileRead reads a structure file, choosing the format from the extension
// (pdb, ent or xyz).
func FileRead(name string) (*Molecule, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdb", ".ent":
		return PDBFileRead(name)
	case ".xyz":
		return XYZFileRead(name)
	}
	return nil, NewError(fmt.Sprintf("%s: %s", ErrUnknownFile, name), "FileRead")
}

// FileWrite writes a single frame to a structure file, choosing the format from the extension
// (pdb, ent or xyz). bfact is ignored for formats that don't support it, and can be nil.
func FileWrite(name string, coords *v3.Matrix, mol Atomer, bfact []float64) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdb", ".ent":
		return PDBFileWrite(name, coords, mol, bfact)
	case ".xyz":
		return XYZFileWrite(name, coords, mol)
	}
	return NewError(fmt.Sprintf("%s: %s", ErrUnknownFile, name), "FileWrite")
}

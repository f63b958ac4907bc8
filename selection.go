/*
 * selection.go, part of msmcells.
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

package chem

import (
	"fmt"
	"strconv"
	"strings"
)

/*Selection is a compiled atom-selection expression. The language is small:

	all, none, protein, backbone, heavy, hydrogen, water
	name NAME..., resname NAME..., chain ID..., element SYMBOL...
	resid N [to M]..., index N [to M]...

Terms are combined with "not", "and" and "or", where "and" binds tighter than
"or", and parentheses can be used for grouping. resid refers to the residue
number in the structure file, index to the 0-based position of the atom.
Names are case sensitive, keywords are not.*/
type Selection struct {
	expr string
	pred func(at *Atom, i int) bool
}

// NewSelection compiles the selection expression expr.
func NewSelection(expr string) (*Selection, error) {
	p := &selParser{toks: selTokenize(expr)}
	if len(p.toks) == 0 {
		return nil, NewError("Empty selection expression", "NewSelection")
	}
	pred, err := p.or()
	if err == nil && p.pos < len(p.toks) {
		err = fmt.Errorf("unexpected token %q", p.toks[p.pos])
	}
	if err != nil {
		return nil, NewError(fmt.Sprintf("selection %q: %s", expr, err.Error()), "NewSelection")
	}
	return &Selection{expr: expr, pred: pred}, nil
}

func (S *Selection) String() string { return S.expr }

// Match returns true if the atom at, in position i, is selected.
func (S *Selection) Match(at *Atom, i int) bool {
	return S.pred(at, i)
}

// Indexes returns the positions of the atoms of mol matched by the selection, in increasing order.
func (S *Selection) Indexes(mol Atomer) []int {
	ret := make([]int, 0, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		if S.pred(mol.Atom(i), i) {
			ret = append(ret, i)
		}
	}
	return ret
}

type atomPred func(at *Atom, i int) bool

var selKeywords = map[string]bool{
	"and": true, "or": true, "not": true, "(": true, ")": true,
	"all": true, "none": true, "protein": true, "backbone": true,
	"heavy": true, "hydrogen": true, "water": true,
	"name": true, "resname": true, "chain": true, "element": true,
	"resid": true, "index": true,
}

var waterNames = map[string]bool{"HOH": true, "WAT": true, "SOL": true, "TIP3": true}

func selTokenize(expr string) []string {
	expr = strings.ReplaceAll(expr, "(", " ( ")
	expr = strings.ReplaceAll(expr, ")", " ) ")
	return strings.Fields(expr)
}

type selParser struct {
	toks []string
	pos  int
}

func (p *selParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return strings.ToLower(p.toks[p.pos])
}

func (p *selParser) or() (atomPred, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.pos++
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(at *Atom, i int) bool { return l(at, i) || right(at, i) }
	}
	return left, nil
}

func (p *selParser) and() (atomPred, error) {
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.pos++
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(at *Atom, i int) bool { return l(at, i) && right(at, i) }
	}
	return left, nil
}

func (p *selParser) not() (atomPred, error) {
	switch p.peek() {
	case "not":
		p.pos++
		inner, err := p.not()
		if err != nil {
			return nil, err
		}
		return func(at *Atom, i int) bool { return !inner(at, i) }, nil
	case "(":
		p.pos++
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	}
	return p.term()
}

// args returns the arguments following a keyword, i.e. all the tokens
// until the next keyword or the end of the expression.
func (p *selParser) args() []string {
	var ret []string
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		if selKeywords[strings.ToLower(t)] {
			break
		}
		ret = append(ret, t)
		p.pos++
	}
	return ret
}

// intRanges parses "1 2 5 to 9" into a list of closed ranges.
// "to" is not a keyword so it shows up in args.
func intRanges(args []string) ([][2]int, error) {
	var ret [][2]int
	for i := 0; i < len(args); i++ {
		a, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", args[i])
		}
		r := [2]int{a, a}
		if i+2 < len(args) && strings.ToLower(args[i+1]) == "to" {
			b, err := strconv.Atoi(args[i+2])
			if err != nil {
				return nil, fmt.Errorf("expected an integer, got %q", args[i+2])
			}
			r[1] = b
			i += 2
		}
		ret = append(ret, r)
	}
	return ret, nil
}

func inRanges(v int, ranges [][2]int) bool {
	for _, r := range ranges {
		if v >= r[0] && v <= r[1] {
			return true
		}
	}
	return false
}

func stringSet(args []string) map[string]bool {
	set := make(map[string]bool, len(args))
	for _, v := range args {
		set[v] = true
	}
	return set
}

func (p *selParser) term() (atomPred, error) {
	kw := p.peek()
	if kw == "" {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	if !selKeywords[kw] {
		return nil, fmt.Errorf("unknown keyword %q", kw)
	}
	p.pos++
	switch kw {
	case "all":
		return func(*Atom, int) bool { return true }, nil
	case "none":
		return func(*Atom, int) bool { return false }, nil
	case "protein":
		return func(at *Atom, _ int) bool { _, ok := three2OneLetter[at.MolName]; return ok }, nil
	case "backbone":
		return func(at *Atom, _ int) bool {
			_, ok := three2OneLetter[at.MolName]
			return ok && backboneNames[at.Name]
		}, nil
	case "heavy":
		return func(at *Atom, _ int) bool { return at.Symbol != "H" }, nil
	case "hydrogen":
		return func(at *Atom, _ int) bool { return at.Symbol == "H" }, nil
	case "water":
		return func(at *Atom, _ int) bool { return waterNames[at.MolName] }, nil
	}
	args := p.args()
	if len(args) == 0 {
		return nil, fmt.Errorf("keyword %q needs at least one argument", kw)
	}
	switch kw {
	case "name":
		set := stringSet(args)
		return func(at *Atom, _ int) bool { return set[at.Name] }, nil
	case "resname":
		set := stringSet(args)
		return func(at *Atom, _ int) bool { return set[at.MolName] }, nil
	case "chain":
		set := stringSet(args)
		return func(at *Atom, _ int) bool { return set[at.Chain] }, nil
	case "element":
		set := stringSet(args)
		return func(at *Atom, _ int) bool { return set[at.Symbol] }, nil
	case "resid", "index":
		ranges, err := intRanges(args)
		if err != nil {
			return nil, err
		}
		if kw == "resid" {
			return func(at *Atom, _ int) bool { return inRanges(at.MolID, ranges) }, nil
		}
		return func(_ *Atom, i int) bool { return inRanges(i, ranges) }, nil
	}
	return nil, fmt.Errorf("unknown keyword %q", kw)
}

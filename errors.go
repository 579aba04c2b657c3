/*
 * errors.go, part of gogrow.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosdotutadotcl
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

package grow

import "fmt"

//CError is the concrete, general-purpose error type of the package.
//More specific conditions get their own types below, so callers can
//recover them with errors.As.
type CError struct {
	msg  string
	deco []string
}

func (err *CError) Error() string { return err.msg }

//Decorate adds the dec string to the decoration slice of the error
//and returns the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//InvalidIndexError means that a referenced atom index does not exist in the
//given molecule, or that a component selection discarded the atom that was
//supposed to anchor the new fragment.
type InvalidIndexError struct {
	Index  int    //the offending index
	N      int    //the number of atoms in the molecule
	Reason string //set when the problem is not a plain out-of-range index
	deco   []string
}

func (err *InvalidIndexError) Error() string {
	if err.Reason != "" {
		return fmt.Sprintf("gogrow: invalid atom index %d: %s", err.Index, err.Reason)
	}
	return fmt.Sprintf("gogrow: atom index %d does not exist in a %d-atom molecule", err.Index, err.N)
}

func (err *InvalidIndexError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//UnsupportedAttachmentError means that the chosen attachment atom cannot be
//safely replaced: wrong bond count, a bond of order higher than one, or an
//anchor that cannot be determined unambiguously.
type UnsupportedAttachmentError struct {
	Index  int
	Reason string
	deco   []string
}

func (err *UnsupportedAttachmentError) Error() string {
	return fmt.Sprintf("gogrow: atom %d is not a supported attachment point: %s", err.Index, err.Reason)
}

func (err *UnsupportedAttachmentError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//AmbiguousSelectionError means that removing the attachment atom disconnected
//the molecular graph and the given "keep" index (if any) did not resolve which
//component to retain.
type AmbiguousSelectionError struct {
	Keep  int   //the offending keep index, or -1 if none was given
	Sizes []int //the sizes of the components found
	deco  []string
}

func (err *AmbiguousSelectionError) Error() string {
	if err.Keep < 0 {
		return fmt.Sprintf("gogrow: cannot select among disconnected components of sizes %v without a keep index", err.Sizes)
	}
	return fmt.Sprintf("gogrow: keep index %d not found in any of the disconnected components (sizes %v)", err.Keep, err.Sizes)
}

func (err *AmbiguousSelectionError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//ValenceError means that a merge would leave an atom with more bond order
//than its element permits.
type ValenceError struct {
	Index   int
	Symbol  string
	Valence float64 //the bond order sum the atom would end up with
	Max     int     //the maximum allowed for the element
	deco    []string
}

func (err *ValenceError) Error() string {
	return fmt.Sprintf("gogrow: atom %d (%s) would end up with a bond order sum of %3.1f, over the %d allowed for the element", err.Index, err.Symbol, err.Valence, err.Max)
}

func (err *ValenceError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//errDecorate decorates err with the caller's name if err implements Error,
//and wraps it with the %w directive otherwise.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return fmt.Errorf("%s: %w", caller, err)
}

//PanicMsg is a message used for panics, even though it does satisfy the error
//interface. For errors, use the types above. Panics are reserved for
//programming errors, such as out of range indexes in functions considered
//"fundamental", where returning an error would bloat every caller.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrAtomOutOfRange     = PanicMsg("gogrow: atom index out of range")
	ErrFrameOutOfRange    = PanicMsg("gogrow: frame index out of range")
	ErrBondCrossWrongAtom = PanicMsg("gogrow: trying to cross a bond from an atom not present in the bond")
	ErrNilAtoms           = PanicMsg("gogrow: nil atoms given")
)

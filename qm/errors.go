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

package qm

import "fmt"

//Error is the general error type for the qm package. It carries the
//program and input name involved along with the message.
type Error struct {
	message    string
	program    string
	inputname  string
	additional string
	deco       []string
	critical   bool
}

func (err Error) Error() string {
	s := fmt.Sprintf("qm: %s. Program: %s, input: %s", err.message, err.program, err.inputname)
	if err.additional != "" {
		s = s + " (" + err.additional + ")"
	}
	return s
}

//Decorate adds the deco string to the error's decoration and returns the
//current decoration. Use an empty string to just retrieve it.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns whether the error should be considered fatal.
func (err Error) Critical() bool {
	return err.critical
}

//Error messages for the qm package.
const (
	ErrMissingCharges  = "missing charges or coordinates"
	ErrCantInput       = "can't write the input for the calculation"
	ErrNotRunning      = "the calculation couldn't be started"
	ErrNoEnergy        = "couldn't read an energy from the output"
	ErrNoGeometry      = "couldn't read a geometry from the output"
	ErrProbableProblem = "probable problem in calculation"
)

//Names of the wrapped programs, for error reporting.
const (
	XTB   = "xtb"
	CREST = "crest"
)

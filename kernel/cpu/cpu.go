/*
 * miniker - Instruction interpreter
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package cpu decodes and executes the four-register machine's
// instruction set: MOV, ADD, SUB, MUL, DIV, INC, DEC, END.
package cpu

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rcornwell/miniker/kernel/pcb"
)

// Runtime faults. All are terminal for the process.
var (
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrArithmeticFault    = errors.New("division by zero")
)

// Op names the decoded opcode.
type Op int

const (
	OpMOV Op = iota
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpINC
	OpDEC
	OpEND
)

// Instruction is the decoded, tagged-sum form of one instruction record.
type Instruction struct {
	Op       Op
	R1       pcb.Register
	HasOp2   bool
	Op2IsReg bool
	Op2Reg   pcb.Register
	Op2Imm   int32
}

var registerNames = map[string]pcb.Register{
	"AX": pcb.AX,
	"BX": pcb.BX,
	"CX": pcb.CX,
	"DX": pcb.DX,
}

var opcodeNames = map[string]Op{
	"MOV": OpMOV,
	"ADD": OpADD,
	"SUB": OpSUB,
	"MUL": OpMUL,
	"DIV": OpDIV,
	"INC": OpINC,
	"DEC": OpDEC,
	"END": OpEND,
}

// IsEndSentinel reports whether a fetched record is all-zero or
// all-whitespace, the end-of-program sentinel.
func IsEndSentinel(raw []byte) bool {
	for _, b := range raw {
		if b != 0 && b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			return false
		}
	}
	return true
}

// Decode parses a fetched record into an Instruction. It returns
// ErrInvalidInstruction for an unrecognized opcode or a malformed operand
// list; callers must check IsEndSentinel before calling Decode.
func Decode(raw []byte) (Instruction, error) {
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return Instruction{}, ErrInvalidInstruction
	}

	op, ok := opcodeNames[fields[0]]
	if !ok {
		return Instruction{}, ErrInvalidInstruction
	}

	instr := Instruction{Op: op}

	switch op {
	case OpEND:
		// Operands, if any, are ignored.
		return instr, nil

	case OpINC, OpDEC:
		if len(fields) != 2 {
			return Instruction{}, ErrInvalidInstruction
		}
		r1, ok := registerNames[fields[1]]
		if !ok {
			return Instruction{}, ErrInvalidInstruction
		}
		instr.R1 = r1
		return instr, nil

	case OpMOV, OpADD, OpSUB, OpMUL, OpDIV:
		if len(fields) != 3 {
			return Instruction{}, ErrInvalidInstruction
		}
		r1, ok := registerNames[fields[1]]
		if !ok {
			return Instruction{}, ErrInvalidInstruction
		}
		instr.R1 = r1
		instr.HasOp2 = true

		if r2, ok := registerNames[fields[2]]; ok {
			instr.Op2IsReg = true
			instr.Op2Reg = r2
			return instr, nil
		}

		n, err := parseSignedInt(fields[2])
		if err != nil {
			return Instruction{}, ErrInvalidInstruction
		}
		instr.Op2Imm = n
		return instr, nil

	default:
		return Instruction{}, ErrInvalidInstruction
	}
}

// parseSignedInt accepts a decimal integer with an optional leading '-'.
func parseSignedInt(s string) (int32, error) {
	if strings.HasPrefix(s, "+") {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

// Outcome reports what Execute did.
type Outcome int

const (
	// Continue means execution succeeded and the process keeps running.
	Continue Outcome = iota
	// Ended means an END instruction was executed (normal termination).
	Ended
	// Faulted means execution hit ErrArithmeticFault or
	// ErrInvalidInstruction (abnormal termination).
	Faulted
)

// operand2 resolves the second operand of a two-operand instruction.
func operand2(p *pcb.PCB, instr Instruction) int32 {
	if instr.Op2IsReg {
		return p.Reg(instr.Op2Reg)
	}
	return instr.Op2Imm
}

// Execute applies instr to p's registers. PC advancement, CPU accounting,
// and aging are the scheduler's responsibility; this function only
// mutates the register file and reports the outcome.
func Execute(p *pcb.PCB, instr Instruction) (Outcome, error) {
	switch instr.Op {
	case OpEND:
		return Ended, nil

	case OpINC:
		p.SetReg(instr.R1, p.Reg(instr.R1)+1)
		return Continue, nil

	case OpDEC:
		p.SetReg(instr.R1, p.Reg(instr.R1)-1)
		return Continue, nil

	case OpMOV:
		p.SetReg(instr.R1, operand2(p, instr))
		return Continue, nil

	case OpADD:
		p.SetReg(instr.R1, p.Reg(instr.R1)+operand2(p, instr))
		return Continue, nil

	case OpSUB:
		p.SetReg(instr.R1, p.Reg(instr.R1)-operand2(p, instr))
		return Continue, nil

	case OpMUL:
		p.SetReg(instr.R1, p.Reg(instr.R1)*operand2(p, instr))
		return Continue, nil

	case OpDIV:
		divisor := operand2(p, instr)
		if divisor == 0 {
			return Faulted, ErrArithmeticFault
		}
		p.SetReg(instr.R1, p.Reg(instr.R1)/divisor)
		return Continue, nil

	default:
		return Faulted, ErrInvalidInstruction
	}
}

package isa

/*
 * VirtuV - RV32I instruction formats and decoder.
 *
 * Copyright 2025, Stefan Costea
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

/*
   RV32I instructions are 32 bits wide. The low seven bits select the
   base opcode, which in turn selects one of six encoding formats:

    R format:  register-register ALU.
      +---------+-------+-------+--------+------+---------+
      | funct7  |  rs2  |  rs1  | funct3 |  rd  | opcode  |
      | [31:25] |[24:20]|[19:15]|[14:12] |[11:7]|  [6:0]  |
      +---------+-------+-------+--------+------+---------+

    I format:  register-immediate ALU and loads.
      +-----------------+-------+--------+------+---------+
      |    imm[11:0]    |  rs1  | funct3 |  rd  | opcode  |
      +-----------------+-------+--------+------+---------+

    S format:  stores.
      +-----------+-------+-------+--------+----------+---------+
      | imm[11:5] |  rs2  |  rs1  | funct3 | imm[4:0] | opcode  |
      +-----------+-------+-------+--------+----------+---------+

    B format:  conditional branches; the immediate is scattered and
      always even.
      +---------+-----------+-------+-------+--------+----------+---------+---------+
      | imm[12] | imm[10:5] |  rs2  |  rs1  | funct3 | imm[4:1] | imm[11] | opcode  |
      +---------+-----------+-------+-------+--------+----------+---------+---------+

    U format:  upper immediate.
      +---------------------------+------+---------+
      |         imm[31:12]        |  rd  | opcode  |
      +---------------------------+------+---------+

    J format:  jumps; the immediate is scattered and always even.
      +---------+-----------+---------+------------+------+---------+
      | imm[20] | imm[10:1] | imm[11] | imm[19:12] |  rd  | opcode  |
      +---------+-----------+---------+------------+------+---------+
*/

// Format tags the six RV32I encoding formats plus an invalid marker.
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatInvalid
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	}
	return "INVALID"
}

// Base opcodes handled by the decoder.
const (
	OpALU    uint32 = 0x33 // R format
	OpALUImm uint32 = 0x13 // I format
	OpLoad   uint32 = 0x03 // I format
	OpStore  uint32 = 0x23 // S format
	OpBranch uint32 = 0x63 // B format
	OpLUI    uint32 = 0x37 // U format
	OpJAL    uint32 = 0x6F // J format
)

// bits extracts raw[hi:lo].
func bits(raw uint32, hi, lo uint) uint32 {
	return (raw >> lo) & ((1 << (hi - lo + 1)) - 1)
}

// signExtend treats the low width bits of v as a two's complement
// value and widens it to 32 bits.
func signExtend(v uint32, width uint) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift
}

// Instruction is the decoded form of a raw word, one concrete type per
// format. Consumers dispatch with a type switch.
type Instruction interface {
	Format() Format
	Raw() uint32
	Opcode() uint32
}

// RType is a register-register ALU instruction.
type RType struct {
	raw    uint32
	Rd     uint32
	Funct3 uint32
	Rs1    uint32
	Rs2    uint32
	Funct7 uint32
}

func (RType) Format() Format   { return FormatR }
func (i RType) Raw() uint32    { return i.raw }
func (i RType) Opcode() uint32 { return bits(i.raw, 6, 0) }

// IType is a register-immediate ALU instruction or a load.
type IType struct {
	raw    uint32
	Rd     uint32
	Funct3 uint32
	Rs1    uint32
}

func (IType) Format() Format   { return FormatI }
func (i IType) Raw() uint32    { return i.raw }
func (i IType) Opcode() uint32 { return bits(i.raw, 6, 0) }

// Immediate reassembles the sign-extended 12-bit immediate.
func (i IType) Immediate() int32 {
	return signExtend(bits(i.raw, 31, 20), 12)
}

// ShiftFunct returns imm[11:5], which distinguishes the logical and
// arithmetic right shift encodings.
func (i IType) ShiftFunct() uint32 {
	return bits(i.raw, 31, 25)
}

// SType is a store instruction.
type SType struct {
	raw    uint32
	Funct3 uint32
	Rs1    uint32
	Rs2    uint32
}

func (SType) Format() Format   { return FormatS }
func (i SType) Raw() uint32    { return i.raw }
func (i SType) Opcode() uint32 { return bits(i.raw, 6, 0) }

// Immediate reassembles imm[11:5] and imm[4:0] into the sign-extended
// 12-bit store offset.
func (i SType) Immediate() int32 {
	imm := bits(i.raw, 31, 25)<<5 | bits(i.raw, 11, 7)
	return signExtend(imm, 12)
}

// BType is a conditional branch instruction.
type BType struct {
	raw    uint32
	Funct3 uint32
	Rs1    uint32
	Rs2    uint32
}

func (BType) Format() Format   { return FormatB }
func (i BType) Raw() uint32    { return i.raw }
func (i BType) Opcode() uint32 { return bits(i.raw, 6, 0) }

// Immediate reassembles the scattered branch offset: bit 31 is
// imm[12], bit 7 is imm[11], bits [30:25] are imm[10:5] and bits
// [11:8] are imm[4:1]. Bit 0 is always zero. Sign-extended from 13
// bits.
func (i BType) Immediate() int32 {
	imm := bits(i.raw, 31, 31)<<12 |
		bits(i.raw, 7, 7)<<11 |
		bits(i.raw, 30, 25)<<5 |
		bits(i.raw, 11, 8)<<1
	return signExtend(imm, 13)
}

// UType is an upper-immediate instruction.
type UType struct {
	raw uint32
	Rd  uint32
}

func (UType) Format() Format   { return FormatU }
func (i UType) Raw() uint32    { return i.raw }
func (i UType) Opcode() uint32 { return bits(i.raw, 6, 0) }

// Immediate places raw[31:12] in the upper 20 bits; the low 12 bits
// are zero and no sign extension applies.
func (i UType) Immediate() int32 {
	return int32(i.raw & 0xFFFFF000)
}

// JType is an unconditional jump instruction.
type JType struct {
	raw uint32
	Rd  uint32
}

func (JType) Format() Format   { return FormatJ }
func (i JType) Raw() uint32    { return i.raw }
func (i JType) Opcode() uint32 { return bits(i.raw, 6, 0) }

// Immediate reassembles the scattered jump offset: bit 31 is imm[20],
// bits [19:12] stay in place, bit 20 is imm[11] and bits [30:21] are
// imm[10:1]. Bit 0 is always zero. Sign-extended from 21 bits.
func (i JType) Immediate() int32 {
	imm := bits(i.raw, 31, 31)<<20 |
		bits(i.raw, 19, 12)<<12 |
		bits(i.raw, 20, 20)<<11 |
		bits(i.raw, 30, 21)<<1
	return signExtend(imm, 21)
}

// Invalid marks a word with an unrecognized opcode.
type Invalid struct {
	raw uint32
}

func (Invalid) Format() Format   { return FormatInvalid }
func (i Invalid) Raw() uint32    { return i.raw }
func (i Invalid) Opcode() uint32 { return bits(i.raw, 6, 0) }

// Decode classifies a raw word by its base opcode and extracts the
// format's fields. Loads (0x03) share the I format with the
// register-immediate ALU opcode (0x13).
func Decode(raw uint32) Instruction {
	switch bits(raw, 6, 0) {
	case OpALU:
		return RType{
			raw:    raw,
			Rd:     bits(raw, 11, 7),
			Funct3: bits(raw, 14, 12),
			Rs1:    bits(raw, 19, 15),
			Rs2:    bits(raw, 24, 20),
			Funct7: bits(raw, 31, 25),
		}
	case OpALUImm, OpLoad:
		return IType{
			raw:    raw,
			Rd:     bits(raw, 11, 7),
			Funct3: bits(raw, 14, 12),
			Rs1:    bits(raw, 19, 15),
		}
	case OpStore:
		return SType{
			raw:    raw,
			Funct3: bits(raw, 14, 12),
			Rs1:    bits(raw, 19, 15),
			Rs2:    bits(raw, 24, 20),
		}
	case OpBranch:
		return BType{
			raw:    raw,
			Funct3: bits(raw, 14, 12),
			Rs1:    bits(raw, 19, 15),
			Rs2:    bits(raw, 24, 20),
		}
	case OpLUI:
		return UType{raw: raw, Rd: bits(raw, 11, 7)}
	case OpJAL:
		return JType{raw: raw, Rd: bits(raw, 11, 7)}
	default:
		return Invalid{raw: raw}
	}
}

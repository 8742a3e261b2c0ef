// Package codec decodes and encodes term.Term values to and from the
// runtime's external term format (ETF).
package codec

// Opcode identifies a wire tag byte in the external term format.
type Opcode byte

const (
	Version Opcode = 131

	SmallIntegerExt Opcode = 97
	IntegerExt      Opcode = 98
	FloatExt        Opcode = 99
	AtomExt         Opcode = 100
	SmallAtomExt    Opcode = 115
	ReferenceExt    Opcode = 101
	NewReferenceExt Opcode = 114
	NewerReferenceExt Opcode = 90
	PortExt         Opcode = 102
	NewPortExt      Opcode = 89
	PidExt          Opcode = 103
	NewPidExt       Opcode = 88
	SmallTupleExt   Opcode = 104
	LargeTupleExt   Opcode = 105
	MapExt          Opcode = 116
	NilExt          Opcode = 106
	StringExt       Opcode = 107
	ListExt         Opcode = 108
	BinaryExt       Opcode = 109
	SmallBigExt     Opcode = 110
	LargeBigExt     Opcode = 111
	NewFloatExt     Opcode = 70
)

package types

import "math/bits"

// Flags is a category bitmask. Bit i belongs to category i of the taxonomy
// that produced the mask, so masks from different taxonomies do not compare.
type Flags uint16

// MaxFlagBits caps the number of categories a taxonomy may define.
const MaxFlagBits = 16

func (f Flags) Has(bit uint8) bool {
	return f&(1<<bit) != 0
}

func (f *Flags) Set(bit uint8) {
	*f |= 1 << bit
}

func (f Flags) Count() int {
	return bits.OnesCount16(uint16(f))
}

// Bit positions of the built-in exam taxonomy.
const (
	ExamCTScans         uint8 = 0
	ExamMRI             uint8 = 1
	ExamUltrasound      uint8 = 2
	ExamRadiography     uint8 = 3
	ExamNuclearMedicine uint8 = 4
	ExamInterventional  uint8 = 5
	ExamCardiovascular  uint8 = 6
	ExamHealthChecks    uint8 = 7
)

// Bit positions of the built-in organ cluster taxonomy.
const (
	OrganHead             uint8 = 0
	OrganNeck             uint8 = 1
	OrganThorax           uint8 = 2
	OrganAbdomenPelvis    uint8 = 3
	OrganUpperExtremities uint8 = 4
	OrganLowerExtremities uint8 = 5
	OrganSpine            uint8 = 6
	OrganSkeletal         uint8 = 7
	OrganLymphatic        uint8 = 8
	OrganBody             uint8 = 9
)

// ContrastCode is the ordinal encoding of a canonical contrast phrase.
type ContrastCode uint8

const (
	ContrastWith    ContrastCode = 0
	ContrastWithout ContrastCode = 1
	ContrastEither  ContrastCode = 2
)

func (c ContrastCode) Name() string {
	switch c {
	case ContrastWith:
		return "with iv contrast"
	case ContrastWithout:
		return "without iv contrast"
	case ContrastEither:
		return "with or without iv contrast"
	}
	return "unknown"
}

package wdbutil

// Layout of the movie database. All offsets are absolute within the file.
const (
	NameTableOffset = 0x90
	NameTableSize   = 0xD40

	// A name table record is name(16) + pointer offset(4) + pointer length(4)
	// followed by 8 bytes that are never read.
	NameRecordSize        = 32
	NameFieldSize         = 16
	PointerOffsetPosition = 16
	PointerLengthPosition = 20
	PointerFieldSize      = 4

	NameTableRecordCount = NameTableSize / NameRecordSize

	ContainerNameListOffset = 0xDD0
	ContainerCodeSize       = 4
)

// A resolution block is delta(4) + length(4) + unused(4) + offset(4).
const (
	ResolutionBlockSize = 16
	BlockDeltaPosition  = 0
	BlockLengthPosition = 4
	BlockOffsetPosition = 12
	BlockFieldSize      = 4
)

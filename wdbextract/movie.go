package wdbextract

import "fmt"

// RawPointer is a name table entry before resolution. ProvisionalOffset
// points at a resolution block inside the database, not at movie data.
type RawPointer struct {
	Name              string
	ProvisionalOffset uint64
}

// ResolvedMovie locates one movie payload inside its container.
type ResolvedMovie struct {
	Name      string
	Container string
	Offset    uint64
	Length    uint64
}

// End returns the offset just past the payload.
func (m ResolvedMovie) End() uint64 {
	return m.Offset + m.Length
}

func (m ResolvedMovie) String() string {
	return fmt.Sprintf("%s@%s[0x%X+0x%X]", m.Name, m.Container, m.Offset, m.Length)
}

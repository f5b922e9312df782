package roster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// MaxRows is the largest row index a column can address. Coordinates are
// packed as column*100+row, so rows must stay below 100 for the packing to
// stay collision-free.
const MaxRows = 99

// MaxColumns bounds the column index so packed coordinates fit in 32 bits.
const MaxColumns = 9999

// ErrCoordinateOutOfRange reports a coordinate that cannot be packed.
var ErrCoordinateOutOfRange = errors.New("roster: coordinate out of range")

var slotNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("rostertab:slot"))

// Identity is the fabricated entry that addresses one grid cell on the client.
type Identity struct {
	ID     uuid.UUID
	Name   string
	Column int
	Row    int
}

// IdentityAt maps a (column,row) coordinate to its synthetic identity. The
// mapping is pure: the same coordinate always yields the same identity.
func IdentityAt(column, row int) (Identity, error) {
	if column < 1 || row < 1 || row > MaxRows || column > MaxColumns {
		return Identity{}, fmt.Errorf("%w: (%d,%d)", ErrCoordinateOutOfRange, column, row)
	}
	packed := column*100 + row
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(packed))
	return Identity{
		ID:     uuid.NewSHA1(slotNamespace, buf[:]),
		Name:   "\x00" + strconv.Itoa(packed),
		Column: column,
		Row:    row,
	}, nil
}

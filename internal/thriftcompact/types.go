// Package thriftcompact implements just enough of the Thrift compact
// protocol to walk a Parquet footer or page header: struct/list/map
// containers and the scalar types Parquet actually uses. It intentionally
// does not implement the full Thrift wire protocol (no messages, no sets
// beyond list reuse, no nested generic RPC framing) because Parquet only
// ever writes bare structs.
package thriftcompact

// Type is a Thrift compact-protocol wire type, as encoded in the low
// nibble of a field header (or the low nibble of a list/set header).
type Type uint8

const (
	TypeStop      Type = 0x00
	TypeBoolTrue  Type = 0x01
	TypeBoolFalse Type = 0x02
	TypeByte      Type = 0x03
	TypeI16       Type = 0x04
	TypeI32       Type = 0x05
	TypeI64       Type = 0x06
	TypeDouble    Type = 0x07
	TypeBinary    Type = 0x08
	TypeList      Type = 0x09
	TypeSet       Type = 0x0A
	TypeMap       Type = 0x0B
	TypeStruct    Type = 0x0C
)

// Field is one decoded struct field: its Thrift field ID, its wire type,
// and the decoded Value.
type Field struct {
	ID    int16
	Type  Type
	Value Value
}

// Value is a tagged union over the scalar and container shapes Parquet's
// Thrift definitions use. Only the member matching Type-ish context is
// meaningful; callers read the field they expect based on the schema ID.
type Value struct {
	Bool         bool
	Byte         int8
	I16          int16
	I32          int32
	I64          int64
	Double       float64
	Binary       []byte
	List         []Value
	ListElemType Type
	MapKeys      []Value
	MapVals      []Value
	Struct       *Struct
}

// Struct is an ordered list of decoded fields, terminated by a STOP byte
// in the wire format (not represented here once decoded).
type Struct struct {
	Fields []Field
}

// Get returns the first field with the given ID, or nil.
func (s *Struct) Get(id int16) *Field {
	if s == nil {
		return nil
	}
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i]
		}
	}
	return nil
}

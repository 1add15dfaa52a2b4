package schema

import "fmt"

// CanonicalType renders a column's logical type tag and parameters into
// the canonical SQL type string used for equality comparison between a
// live and a desired column. The Reflector maps catalog types back into
// this same form, so a live and a desired Column with equal CanonicalType
// output are considered type-equal regardless of how each was produced.
func (c Column) CanonicalType() string {
	switch c.Tag {
	case Integer:
		return "integer"
	case BigInteger:
		return "bigint"
	case Boolean:
		return "boolean"
	case Float:
		return "double precision"
	case Text:
		return "text"
	case VarChar:
		return fmt.Sprintf("character varying(%d)", c.Length)
	case EnumTag:
		return "USER-DEFINED:" + c.EnumName
	default:
		return string(c.Tag)
	}
}

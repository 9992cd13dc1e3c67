// Package kind defines the canonical scalar kinds a field in a .via model
// can resolve to. The DSL spells kinds loosely (e.g. "boolean", "integer");
// Lookup normalizes those spellings to one canonical Kind, and everything
// downstream of the resolver (IR, emitters) works with Kind values only.
package kind

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// A Kind is a canonical scalar kind.
type Kind uint8

// The scalar kinds understood by the compiler.
const (
	Invalid Kind = iota
	String
	Text
	Bool
	Int
	BigInt
	Float
	DateTime
	Date
	UUID
	JSON
	Bytes
	endKinds
)

var names = [...]string{
	Invalid:  "invalid",
	String:   "string",
	Text:     "text",
	Bool:     "bool",
	Int:      "int",
	BigInt:   "bigint",
	Float:    "float",
	DateTime: "datetime",
	Date:     "date",
	UUID:     "uuid",
	JSON:     "json",
	Bytes:    "bytes",
}

// aliases maps the spellings accepted in .via source to canonical kinds.
// Lookup lowercases its input first, so only lowercase keys appear here.
var aliases = map[string]Kind{
	"string":   String,
	"text":     Text,
	"bool":     Bool,
	"boolean":  Bool,
	"int":      Int,
	"integer":  Int,
	"bigint":   BigInt,
	"int64":    BigInt,
	"float":    Float,
	"double":   Float,
	"datetime": DateTime,
	"ts":       DateTime,
	"date":     Date,
	"uuid":     UUID,
	"json":     JSON,
	"jsonb":    JSON,
	"bytes":    Bytes,
	"binary":   Bytes,
}

// Lookup resolves a DSL type name to its canonical kind. Matching is
// case-insensitive. The second return value reports whether the name is known.
func Lookup(name string) (Kind, bool) {
	k, ok := aliases[strings.ToLower(name)]
	return k, ok
}

// Names returns the canonical names of all valid kinds in declaration order.
func Names() []string {
	out := make([]string, 0, int(endKinds)-1)
	for k := String; k < endKinds; k++ {
		out = append(out, names[k])
	}
	return out
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if k < endKinds {
		return names[k]
	}
	return fmt.Sprintf("invalid(%d)", k)
}

// Valid reports if the kind is a valid field kind.
func (k Kind) Valid() bool {
	return k > Invalid && k < endKinds
}

// Numeric reports if the kind is a numeric kind.
func (k Kind) Numeric() bool {
	return k == Int || k == BigInt || k == Float
}

// Textual reports if the kind is stored as character data.
func (k Kind) Textual() bool {
	return k == String || k == Text
}

// Temporal reports if the kind carries a point in time.
func (k Kind) Temporal() bool {
	return k == DateTime || k == Date
}

// MarshalText implements encoding.TextMarshaler so kinds serialize as their
// canonical names in JSON documents.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("kind: cannot marshal invalid kind %d", uint8(k))
	}
	return []byte(names[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	got, ok := Lookup(string(text))
	if !ok {
		return fmt.Errorf("kind: unknown kind %q", text)
	}
	*k = got
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder so binary IR documents use
// the same canonical names as JSON ones.
func (k Kind) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !k.Valid() {
		return fmt.Errorf("kind: cannot encode invalid kind %d", uint8(k))
	}
	return enc.EncodeString(names[k])
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (k *Kind) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

var (
	_ msgpack.CustomEncoder = String
	_ msgpack.CustomDecoder = (*Kind)(nil)
)

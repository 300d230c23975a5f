package resolver

import (
	"math"
	"strconv"

	"github.com/tidwall/gjson"
)

// ValueKind identifica la variante de un Value
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Field es un par clave/valor de un objeto, en el orden del documento
type Field struct {
	Key   string
	Value Value
}

// Value es un valor JSON de forma desconocida. Solo el campo que
// corresponde a Kind tiene contenido.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Num    float64
	Str    string
	Items  []Value
	Fields []Field
}

// ParseValue convierte bytes JSON en un Value. Un documento inválido da
// un Value nulo.
func ParseValue(raw []byte) Value {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return Value{}
	}
	return fromResult(gjson.ParseBytes(raw))
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.True:
		return Value{Kind: KindBool, Bool: true}
	case gjson.False:
		return Value{Kind: KindBool}
	case gjson.Number:
		return Value{Kind: KindNumber, Num: r.Num}
	case gjson.String:
		return Value{Kind: KindString, Str: r.Str}
	case gjson.JSON:
		if r.IsArray() {
			v := Value{Kind: KindArray}
			r.ForEach(func(_, item gjson.Result) bool {
				v.Items = append(v.Items, fromResult(item))
				return true
			})
			return v
		}
		v := Value{Kind: KindObject}
		r.ForEach(func(key, item gjson.Result) bool {
			v.Fields = append(v.Fields, Field{Key: key.String(), Value: fromResult(item)})
			return true
		})
		return v
	default:
		return Value{}
	}
}

// Get busca una clave en un objeto. Con claves duplicadas gana la última.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	for i := len(v.Fields) - 1; i >= 0; i-- {
		if v.Fields[i].Key == key {
			return v.Fields[i].Value, true
		}
	}
	return Value{}, false
}

// Truthy sigue la noción de "vacío" de la API: null, false, 0 y "" no cuentan
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case KindString:
		return v.Str != ""
	case KindArray, KindObject:
		return true
	default:
		return false
	}
}

// Text retorna el contenido de strings y números como texto
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// GetText retorna el texto de una clave, o "" si falta
func (v Value) GetText(key string) string {
	field, ok := v.Get(key)
	if !ok {
		return ""
	}
	return field.Text()
}

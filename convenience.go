package tapejson

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"sync"
)

// Marshal encodes v as JSON, following the same struct-tag conventions as
// encoding/json: a field's `json:"name,omitempty"` tag renames it and
// "-" skips it.
func Marshal(v interface{}) ([]byte, error) {
	e := newEncoder()
	defer e.release()
	return e.marshal(v)
}

// Unmarshal parses data and decodes it into v, which must be a non-nil
// pointer. It runs the real Parse pipeline and walks the resulting
// Document with a Cursor; no intermediate interface{} tree is built
// except for fields whose static type is interface{}.
func Unmarshal(data []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("tapejson: Unmarshal requires a non-nil pointer")
	}

	ctx := New(DefaultConfig())
	defer ctx.Release()

	doc, err := Parse(ctx, data)
	if err != nil {
		return err
	}
	return decodeValue(doc.Root(), rv.Elem())
}

// Decoder reads and decodes a single JSON value from r, the way
// encoding/json.Decoder does for the single-document case (this module's
// streaming case is DocumentStream, not Decoder).
type Decoder struct {
	r   io.Reader
	cfg Config
}

// NewDecoder returns a Decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, cfg: DefaultConfig()}
}

// Decode reads all of r and unmarshals it into v.
func (d *Decoder) Decode(v interface{}) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return Unmarshal(data, v)
}

// Encoder writes successive Marshal results to w.
type Encoder struct {
	w   io.Writer
	enc *encoder
}

// NewEncoder returns an Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, enc: newEncoder()}
}

// Encode marshals v and writes the result to the Encoder's writer.
func (e *Encoder) Encode(v interface{}) error {
	e.enc.buf = e.enc.buf[:0]
	data, err := e.enc.marshal(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

// decodeValue dispatches on the cursor's tape tag, following the
// teacher's decoder.decode dispatch but reading tags off a live Cursor
// instead of an already-built interface{} tree.
func decodeValue(c Cursor, dst reflect.Value) error {
	if dst.Kind() == reflect.Ptr {
		if c.IsNull() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return decodeValue(c, dst.Elem())
	}

	if dst.Kind() == reflect.Interface && dst.Type().NumMethod() == 0 {
		v, err := decodeAny(c)
		if err != nil {
			return err
		}
		if v == nil {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		dst.Set(reflect.ValueOf(v))
		return nil
	}

	switch c.Type() {
	case TagNull:
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	case TagTrue, TagFalse:
		b, err := c.Bool()
		if err != nil {
			return err
		}
		return decodeBool(b, dst)
	case TagInt64:
		i, err := c.Int64()
		if err != nil {
			return err
		}
		return decodeInt(i, dst)
	case TagUint64:
		u, err := c.Uint64()
		if err != nil {
			return err
		}
		return decodeUint(u, dst)
	case TagDouble:
		f, err := c.Float64()
		if err != nil {
			return err
		}
		return decodeFloat(f, dst)
	case TagString:
		s, err := c.String()
		if err != nil {
			return err
		}
		return decodeString(s, dst)
	case TagArrayOpen:
		return decodeArray(c, dst)
	case TagObjectOpen:
		return decodeObject(c, dst)
	}
	return fmt.Errorf("tapejson: unexpected tape tag %q", byte(c.Type()))
}

func decodeBool(b bool, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Bool:
		dst.SetBool(b)
		return nil
	case reflect.Interface:
		if dst.Type().NumMethod() == 0 {
			dst.Set(reflect.ValueOf(b))
			return nil
		}
	}
	return fmt.Errorf("tapejson: cannot unmarshal bool into %s", dst.Type())
}

func decodeInt(i int64, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i < 0 {
			return fmt.Errorf("tapejson: negative number into %s", dst.Type())
		}
		dst.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(float64(i))
		return nil
	case reflect.Interface:
		if dst.Type().NumMethod() == 0 {
			dst.Set(reflect.ValueOf(i))
			return nil
		}
	}
	return fmt.Errorf("tapejson: cannot unmarshal number into %s", dst.Type())
}

func decodeUint(u uint64, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst.SetUint(u)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if u > math.MaxInt64 {
			return fmt.Errorf("tapejson: number out of range for %s", dst.Type())
		}
		dst.SetInt(int64(u))
		return nil
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(float64(u))
		return nil
	case reflect.Interface:
		if dst.Type().NumMethod() == 0 {
			dst.Set(reflect.ValueOf(u))
			return nil
		}
	}
	return fmt.Errorf("tapejson: cannot unmarshal number into %s", dst.Type())
}

func decodeFloat(f float64, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(f)
		return nil
	case reflect.Interface:
		if dst.Type().NumMethod() == 0 {
			dst.Set(reflect.ValueOf(f))
			return nil
		}
	}
	return fmt.Errorf("tapejson: cannot unmarshal number into %s", dst.Type())
}

func decodeString(s string, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(s)
		return nil
	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			decoded, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return fmt.Errorf("tapejson: invalid base64 in []byte field: %w", err)
			}
			dst.SetBytes(decoded)
			return nil
		}
	case reflect.Interface:
		if dst.Type().NumMethod() == 0 {
			dst.Set(reflect.ValueOf(s))
			return nil
		}
	}
	return fmt.Errorf("tapejson: cannot unmarshal string into %s", dst.Type())
}

func decodeArray(c Cursor, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Slice:
		elems := collectChildren(c)
		dst.Set(reflect.MakeSlice(dst.Type(), len(elems), len(elems)))
		for i, ec := range elems {
			if err := decodeValue(ec, dst.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Array:
		elems := collectChildren(c)
		if dst.Len() < len(elems) {
			return errors.New("tapejson: array too small for JSON array")
		}
		for i, ec := range elems {
			if err := decodeValue(ec, dst.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Interface:
		if dst.Type().NumMethod() == 0 {
			v, err := decodeAny(c)
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(v))
			return nil
		}
	}
	return fmt.Errorf("tapejson: cannot unmarshal array into %s", dst.Type())
}

func collectChildren(c Cursor) []Cursor {
	var out []Cursor
	child, ok := c.Down()
	for ok {
		out = append(out, child)
		child, ok = child.Next()
	}
	return out
}

func decodeObject(c Cursor, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Map:
		if dst.Type().Key().Kind() != reflect.String {
			return errors.New("tapejson: map key must be string")
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(dst.Type()))
		}
		elemType := dst.Type().Elem()
		return walkObject(c, func(key string, val Cursor) error {
			keyVal := reflect.New(dst.Type().Key()).Elem()
			keyVal.SetString(key)
			elemVal := reflect.New(elemType).Elem()
			if err := decodeValue(val, elemVal); err != nil {
				return err
			}
			dst.SetMapIndex(keyVal, elemVal)
			return nil
		})
	case reflect.Struct:
		return decodeStruct(c, dst)
	case reflect.Interface:
		if dst.Type().NumMethod() == 0 {
			v, err := decodeAny(c)
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(v))
			return nil
		}
	}
	return fmt.Errorf("tapejson: cannot unmarshal object into %s", dst.Type())
}

func decodeStruct(c Cursor, dst reflect.Value) error {
	fields := structFieldIndex(dst.Type())
	return walkObject(c, func(key string, val Cursor) error {
		idx, ok := fields[key]
		if !ok {
			return nil
		}
		field := dst.Field(idx)
		if !field.CanSet() {
			return nil
		}
		return decodeValue(val, field)
	})
}

// structFieldIndex builds the JSON-name -> field-index map decodeStruct
// needs, honoring `json:"name"` tags and "-" skips, the way the teacher's
// decodeStruct did for its own intermediate-tree walk.
func structFieldIndex(typ reflect.Type) map[string]int {
	fields := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := f.Name
		if tag != "" {
			if idx := indexComma(tag); idx != -1 {
				name = tag[:idx]
			} else {
				name = tag
			}
		}
		fields[name] = i
	}
	return fields
}

func indexComma(s string) int {
	for i, r := range s {
		if r == ',' {
			return i
		}
	}
	return -1
}

// walkObject visits an object cursor's key/value pairs in document order.
func walkObject(c Cursor, fn func(key string, val Cursor) error) error {
	key, ok := c.Down()
	for ok {
		k, err := key.String()
		if err != nil {
			return err
		}
		val, ok2 := key.Next()
		if !ok2 {
			return errors.New("tapejson: malformed object on tape")
		}
		if err := fn(k, val); err != nil {
			return err
		}
		key, ok = val.Next()
	}
	return nil
}

// decodeAny materializes a cursor's value as the same interface{} shapes
// encoding/json uses: map[string]interface{}, []interface{}, string,
// bool, and int64/uint64/float64 for numbers.
func decodeAny(c Cursor) (interface{}, error) {
	switch c.Type() {
	case TagNull:
		return nil, nil
	case TagTrue, TagFalse:
		return c.Bool()
	case TagInt64:
		return c.Int64()
	case TagUint64:
		return c.Uint64()
	case TagDouble:
		return c.Float64()
	case TagString:
		return c.String()
	case TagArrayOpen:
		var out []interface{}
		child, ok := c.Down()
		for ok {
			v, err := decodeAny(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			child, ok = child.Next()
		}
		return out, nil
	case TagObjectOpen:
		out := make(map[string]interface{})
		err := walkObject(c, func(key string, val Cursor) error {
			v, err := decodeAny(val)
			if err != nil {
				return err
			}
			out[key] = v
			return nil
		})
		return out, err
	}
	return nil, fmt.Errorf("tapejson: unexpected tape tag %q", byte(c.Type()))
}

// encoder is a reusable reflect-based JSON writer, adapted from the
// teacher's encoder.go: buffer pooling, base64 for []byte, strconv-based
// number formatting.
type encoder struct {
	buf []byte
}

var encoderPool = sync.Pool{
	New: func() interface{} {
		return &encoder{buf: make([]byte, 0, 4096)}
	},
}

func newEncoder() *encoder {
	e := encoderPool.Get().(*encoder)
	e.buf = e.buf[:0]
	return e
}

func (e *encoder) release() {
	if cap(e.buf) > 64*1024 {
		e.buf = make([]byte, 0, 4096)
	}
	encoderPool.Put(e)
}

func (e *encoder) marshal(v interface{}) ([]byte, error) {
	if err := e.encode(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	result := make([]byte, len(e.buf))
	copy(result, e.buf)
	return result, nil
}

func (e *encoder) encode(v reflect.Value) error {
	if !v.IsValid() {
		e.buf = append(e.buf, "null"...)
		return nil
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Bool:
		return e.encodeBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.encodeInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return e.encodeUint(v.Uint())
	case reflect.Float32, reflect.Float64:
		return e.encodeFloat(v.Float())
	case reflect.String:
		return e.encodeString(v.String())
	case reflect.Slice:
		if v.IsNil() {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return e.encodeBytes(v.Bytes())
		}
		return e.encodeArray(v)
	case reflect.Array:
		return e.encodeArray(v)
	case reflect.Map:
		return e.encodeMap(v)
	case reflect.Struct:
		return e.encodeStruct(v)
	case reflect.Interface:
		if v.IsNil() {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		return e.encode(v.Elem())
	default:
		return fmt.Errorf("tapejson: unsupported type %s", v.Type())
	}
}

func (e *encoder) encodeBool(b bool) error {
	if b {
		e.buf = append(e.buf, "true"...)
	} else {
		e.buf = append(e.buf, "false"...)
	}
	return nil
}

func (e *encoder) encodeInt(i int64) error {
	e.buf = strconv.AppendInt(e.buf, i, 10)
	return nil
}

func (e *encoder) encodeUint(u uint64) error {
	e.buf = strconv.AppendUint(e.buf, u, 10)
	return nil
}

func (e *encoder) encodeFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("tapejson: unsupported float value (NaN/Inf)")
	}
	e.buf = strconv.AppendFloat(e.buf, f, 'g', -1, 64)
	return nil
}

func (e *encoder) encodeString(s string) error {
	e.buf = append(e.buf, '"')
	if !needsEscape(s) {
		e.buf = append(e.buf, s...)
		e.buf = append(e.buf, '"')
		return nil
	}
	e.buf = appendEscapedString(e.buf, s)
	e.buf = append(e.buf, '"')
	return nil
}

func needsEscape(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == '"' || r == '\\' {
			return true
		}
	}
	return false
}

func appendEscapedString(dst []byte, s string) []byte {
	for _, r := range s {
		switch r {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if r < 0x20 {
				dst = append(dst, '\\', 'u')
				hex := strconv.FormatInt(int64(r), 16)
				for i := len(hex); i < 4; i++ {
					dst = append(dst, '0')
				}
				dst = append(dst, hex...)
			} else {
				dst = append(dst, string(r)...)
			}
		}
	}
	return dst
}

func (e *encoder) encodeBytes(b []byte) error {
	e.buf = append(e.buf, '"')
	encodedLen := base64.StdEncoding.EncodedLen(len(b))
	start := len(e.buf)
	e.buf = append(e.buf, make([]byte, encodedLen)...)
	base64.StdEncoding.Encode(e.buf[start:], b)
	e.buf = append(e.buf, '"')
	return nil
}

func (e *encoder) encodeArray(v reflect.Value) error {
	e.buf = append(e.buf, '[')
	n := v.Len()
	for i := 0; i < n; i++ {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		if err := e.encode(v.Index(i)); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, ']')
	return nil
}

func (e *encoder) encodeMap(v reflect.Value) error {
	if v.Type().Key().Kind() != reflect.String {
		return errors.New("tapejson: map key must be string")
	}
	e.buf = append(e.buf, '{')
	keys := v.MapKeys()
	for i, key := range keys {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		if err := e.encodeString(key.String()); err != nil {
			return err
		}
		e.buf = append(e.buf, ':')
		if err := e.encode(v.MapIndex(key)); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *encoder) encodeStruct(v reflect.Value) error {
	e.buf = append(e.buf, '{')
	typ := v.Type()
	first := true
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		structField := typ.Field(i)
		if structField.PkgPath != "" {
			continue
		}
		tag := structField.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := structField.Name
		omitempty := false
		if tag != "" {
			if idx := indexComma(tag); idx != -1 {
				name = tag[:idx]
				if tag[idx+1:] == "omitempty" {
					omitempty = true
				}
			} else {
				name = tag
			}
		}
		if omitempty && isEmptyValue(field) {
			continue
		}
		if !first {
			e.buf = append(e.buf, ',')
		}
		first = false
		if err := e.encodeString(name); err != nil {
			return err
		}
		e.buf = append(e.buf, ':')
		if err := e.encode(field); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"fmt"
	"strings"
)

// TypeKind discriminates the variants of a parsed type descriptor.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindBoolean
	KindByte
	KindShort
	KindChar
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindReference
	KindArray
)

// Type is a parsed type_id descriptor: one of the nine primitive kinds,
// a fully qualified class name ("Lcom/example/Foo;" decoded down to
// "com/example/Foo"), or an array of some element type with a
// dimension count.
type Type struct {
	Kind       TypeKind
	Name       string // set only for KindReference
	Dimensions uint8  // set only for KindArray
	Element    *Type  // set only for KindArray
}

// parseTypeDescriptor parses a type_id's descriptor string, following
// the grammar: a single primitive letter, "L<name>;" for a reference,
// or one or more leading '[' for an array wrapping any of the above.
func parseTypeDescriptor(s string) (Type, error) {
	if s == "" {
		return Type{}, fmt.Errorf("%w: %q", ErrInvalidTypeDescriptor, s)
	}
	switch s[0] {
	case 'V':
		return Type{Kind: KindVoid}, nil
	case 'Z':
		return Type{Kind: KindBoolean}, nil
	case 'B':
		return Type{Kind: KindByte}, nil
	case 'S':
		return Type{Kind: KindShort}, nil
	case 'C':
		return Type{Kind: KindChar}, nil
	case 'I':
		return Type{Kind: KindInt}, nil
	case 'J':
		return Type{Kind: KindLong}, nil
	case 'F':
		return Type{Kind: KindFloat}, nil
	case 'D':
		return Type{Kind: KindDouble}, nil
	case 'L':
		if !strings.HasSuffix(s, ";") || len(s) < 2 {
			return Type{}, fmt.Errorf("%w: %q", ErrInvalidTypeDescriptor, s)
		}
		return Type{Kind: KindReference, Name: s[1 : len(s)-1]}, nil
	case '[':
		var dims uint8
		i := 0
		for i < len(s) && s[i] == '[' {
			dims++
			i++
		}
		if i >= len(s) {
			return Type{}, fmt.Errorf("%w: %q", ErrInvalidTypeDescriptor, s)
		}
		elem, err := parseTypeDescriptor(s[i:])
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: KindArray, Dimensions: dims, Element: &elem}, nil
	default:
		return Type{}, fmt.Errorf("%w: %q", ErrInvalidTypeDescriptor, s)
	}
}

// String renders the descriptor back to its JVM-style textual form,
// mostly useful for diagnostics.
func (t Type) String() string {
	switch t.Kind {
	case KindVoid:
		return "V"
	case KindBoolean:
		return "Z"
	case KindByte:
		return "B"
	case KindShort:
		return "S"
	case KindChar:
		return "C"
	case KindInt:
		return "I"
	case KindLong:
		return "J"
	case KindFloat:
		return "F"
	case KindDouble:
		return "D"
	case KindReference:
		return "L" + t.Name + ";"
	case KindArray:
		return strings.Repeat("[", int(t.Dimensions)) + t.Element.String()
	default:
		return "?"
	}
}

// ShortyFieldType is the coarse type category used in a method's shorty
// (short-form) descriptor: every reference type, regardless of its
// actual class, collapses to Reference.
type ShortyFieldType int

const (
	ShortyBoolean ShortyFieldType = iota
	ShortyByte
	ShortyShort
	ShortyChar
	ShortyInt
	ShortyLong
	ShortyFloat
	ShortyDouble
	ShortyReference
)

// shortyFieldTypeFromChar maps a shorty character to its coarse
// category. 'V' (void) is only valid as a return type and is handled
// by the caller, never here.
func shortyFieldTypeFromChar(c byte) (ShortyFieldType, error) {
	switch c {
	case 'Z':
		return ShortyBoolean, nil
	case 'B':
		return ShortyByte, nil
	case 'S':
		return ShortyShort, nil
	case 'C':
		return ShortyChar, nil
	case 'I':
		return ShortyInt, nil
	case 'J':
		return ShortyLong, nil
	case 'F':
		return ShortyFloat, nil
	case 'D':
		return ShortyDouble, nil
	case 'L':
		return ShortyReference, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidShortyType, c)
	}
}

// ShortyDescriptor is a method's compact prototype signature: a return
// type followed by zero or more parameter categories, each collapsing
// every reference type down to a single 'L' bucket.
type ShortyDescriptor struct {
	ReturnType  ShortyFieldType
	ReturnVoid  bool
	ParamTypes  []ShortyFieldType
}

// parseShortyDescriptor parses a proto_id's shorty string, e.g. "VL"
// for a method taking one reference argument and returning void.
func parseShortyDescriptor(s string) (ShortyDescriptor, error) {
	if s == "" {
		return ShortyDescriptor{}, fmt.Errorf("%w: %q", ErrInvalidShortyDescriptor, s)
	}
	var d ShortyDescriptor
	if s[0] == 'V' {
		d.ReturnVoid = true
	} else {
		rt, err := shortyFieldTypeFromChar(s[0])
		if err != nil {
			return ShortyDescriptor{}, err
		}
		d.ReturnType = rt
	}
	d.ParamTypes = make([]ShortyFieldType, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		ft, err := shortyFieldTypeFromChar(s[i])
		if err != nil {
			return ShortyDescriptor{}, err
		}
		d.ParamTypes = append(d.ParamTypes, ft)
	}
	return d, nil
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/awslabs/ar-jit-tools/compiler/builder"
	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/compiler/meta"
	"github.com/awslabs/ar-jit-tools/internal/metatest"
)

// program is a parsed textual listing: a type universe plus method bodies.
// The listing format is a harness-only stand-in for a real instruction
// stream; the compiler core never sees it.
//
//	type Animal Object
//	method Example.test boolean (object) {
//	    stamp 0 Animal
//	    0: load 0 object
//	    1: instanceof Animal
//	    2: return boolean
//	}
type program struct {
	universe *metatest.Universe
	stamps   *metatest.Stamps
	bodies   map[string][]instruction
}

type instruction struct {
	bci  int
	op   string
	args []string
}

func loadProgram(path string) (*program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	pr := &program{
		universe: metatest.NewUniverse(),
		stamps:   metatest.NewStamps(),
		bodies:   map[string][]instruction{},
	}

	var current *metatest.Method
	var stamps []ir.ObjectStamp
	lineno := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.TrimSuffix(line, "{"))
		switch {
		case fields[0] == "type":
			if err := pr.parseType(fields[1:]); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineno, err)
			}
		case fields[0] == "method":
			current, err = pr.parseMethodHeader(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineno, err)
			}
			stamps = make([]ir.ObjectStamp, len(current.ParamKinds()))
		case fields[0] == "}":
			if current == nil {
				return nil, fmt.Errorf("%s:%d: unmatched }", path, lineno)
			}
			pr.stamps.SetParamStamps(current, stamps...)
			current, stamps = nil, nil
		case fields[0] == "stamp":
			if err := pr.parseStamp(fields[1:], stamps); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineno, err)
			}
		default:
			if current == nil {
				return nil, fmt.Errorf("%s:%d: instruction outside method block", path, lineno)
			}
			ins, err := parseInstruction(fields)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineno, err)
			}
			q := current.Qualified()
			pr.bodies[q] = append(pr.bodies[q], ins)
		}
	}
	return pr, scanner.Err()
}

// parseType handles "type Name [Parent]"; the parent defaults to Object.
func (pr *program) parseType(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("type needs a name")
	}
	parent := pr.universe.Object
	if len(args) > 1 {
		p, err := pr.universe.LookupType(args[1])
		if err != nil {
			return err
		}
		parent = p.(*metatest.Type)
	}
	pr.universe.AddType(args[0], parent)
	return nil
}

// parseMethodHeader handles "method Type.name returnKind (kind kind ...)".
func (pr *program) parseMethodHeader(args []string) (*metatest.Method, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("method needs a qualified name and return kind")
	}
	typeName, methodName, ok := strings.Cut(args[0], ".")
	if !ok {
		return nil, fmt.Errorf("method name %q is not of the form Type.name", args[0])
	}
	declared, err := pr.universe.LookupType(typeName)
	if err != nil {
		return nil, err
	}
	returnKind, err := kindFromName(args[1])
	if err != nil {
		return nil, err
	}
	var returnType meta.ResolvedType
	var params []meta.Kind
	for _, a := range args[2:] {
		a = strings.Trim(a, "()")
		if a == "" {
			continue
		}
		if k, err := kindFromName(a); err == nil {
			params = append(params, k)
			continue
		}
		// a type name in return position refines an object return
		rt, err := pr.universe.LookupType(a)
		if err != nil {
			return nil, err
		}
		returnType = rt
	}
	return pr.universe.AddMethod(declared.(*metatest.Type), methodName, returnKind, returnType, params...), nil
}

// parseStamp handles "stamp <index> <Type> [exact] [nonnull]".
func (pr *program) parseStamp(args []string, stamps []ir.ObjectStamp) error {
	if len(args) < 2 {
		return fmt.Errorf("stamp needs an index and a type")
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 0 || idx >= len(stamps) {
		return fmt.Errorf("bad stamp index %q", args[0])
	}
	typ, err := pr.universe.LookupType(args[1])
	if err != nil {
		return err
	}
	stamps[idx].Type = typ
	for _, flag := range args[2:] {
		switch flag {
		case "exact":
			stamps[idx].Exact = true
		case "nonnull":
			stamps[idx].NonNull = true
		default:
			return fmt.Errorf("unknown stamp flag %q", flag)
		}
	}
	return nil
}

func parseInstruction(fields []string) (instruction, error) {
	bciStr, ok := strings.CutSuffix(fields[0], ":")
	if !ok {
		return instruction{}, fmt.Errorf("instruction %q has no bci label", strings.Join(fields, " "))
	}
	bci, err := strconv.Atoi(bciStr)
	if err != nil {
		return instruction{}, fmt.Errorf("bad bci %q", bciStr)
	}
	if len(fields) < 2 {
		return instruction{}, fmt.Errorf("empty instruction at bci %d", bci)
	}
	return instruction{bci: bci, op: fields[1], args: fields[2:]}, nil
}

// Decode implements builder.MethodDecoder by replaying the listed
// instructions into the parser.
func (pr *program) Decode(p *builder.GraphParser, method meta.ResolvedMethod) error {
	body, ok := pr.bodies[method.Qualified()]
	if !ok {
		return fmt.Errorf("no body for %s", method.Qualified())
	}
	for _, ins := range body {
		p.SetBCI(ins.bci)
		if err := pr.decodeOne(p, ins); err != nil {
			return err
		}
	}
	return nil
}

func (pr *program) decodeOne(p *builder.GraphParser, ins instruction) error {
	switch ins.op {
	case "load", "store":
		if len(ins.args) != 2 {
			return fmt.Errorf("%s needs an index and a kind", ins.op)
		}
		idx, err := strconv.Atoi(ins.args[0])
		if err != nil {
			return fmt.Errorf("bad local index %q", ins.args[0])
		}
		kind, err := kindFromName(ins.args[1])
		if err != nil {
			return err
		}
		if ins.op == "load" {
			p.LoadLocal(idx, kind)
		} else {
			p.StoreLocal(idx, kind)
		}
	case "const":
		c, err := parseConstant(ins.args)
		if err != nil {
			return err
		}
		p.PushConstant(c)
	case "instanceof":
		if len(ins.args) != 1 {
			return fmt.Errorf("instanceof needs a type")
		}
		typ, err := pr.universe.LookupType(ins.args[0])
		if err != nil {
			return err
		}
		p.InstanceOf(typ, nil)
	case "nullcheck":
		p.NullCheck(len(ins.args) == 1 && ins.args[0] == "null")
	case "invoke":
		if len(ins.args) != 2 {
			return fmt.Errorf("invoke needs a dispatch kind and a target")
		}
		ikind, err := invokeKindFromName(ins.args[0])
		if err != nil {
			return err
		}
		target, err := pr.universe.LookupMethod(ins.args[1])
		if err != nil {
			return err
		}
		p.Invoke(ikind, target)
	case "return":
		kind := meta.KindVoid
		if len(ins.args) == 1 {
			k, err := kindFromName(ins.args[0])
			if err != nil {
				return err
			}
			kind = k
		}
		p.Return(kind)
	default:
		return fmt.Errorf("unsupported instruction %q", ins.op)
	}
	return nil
}

func parseConstant(args []string) (meta.Constant, error) {
	if len(args) == 0 {
		return meta.Constant{}, fmt.Errorf("const needs a value")
	}
	switch args[0] {
	case "null":
		return meta.NullObject, nil
	case "true":
		return meta.ForBoolean(true), nil
	case "false":
		return meta.ForBoolean(false), nil
	default:
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return meta.Constant{}, fmt.Errorf("bad constant %q", args[0])
		}
		return meta.ForInt(v), nil
	}
}

var kindNames = map[string]meta.Kind{
	"void":    meta.KindVoid,
	"boolean": meta.KindBoolean,
	"byte":    meta.KindByte,
	"short":   meta.KindShort,
	"char":    meta.KindChar,
	"int":     meta.KindInt,
	"long":    meta.KindLong,
	"float":   meta.KindFloat,
	"double":  meta.KindDouble,
	"object":  meta.KindObject,
	"word":    meta.KindWord,
}

func kindFromName(s string) (meta.Kind, error) {
	if k, ok := kindNames[s]; ok {
		return k, nil
	}
	return meta.KindIllegal, fmt.Errorf("unknown kind %q", s)
}

func invokeKindFromName(s string) (ir.InvokeKind, error) {
	switch s {
	case "static":
		return ir.InvokeStatic, nil
	case "special":
		return ir.InvokeSpecial, nil
	case "virtual":
		return ir.InvokeVirtual, nil
	case "interface":
		return ir.InvokeInterface, nil
	}
	return 0, fmt.Errorf("unknown invoke kind %q", s)
}

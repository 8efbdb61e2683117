// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package wire

import (
	"github.com/probechain/pcodecore/internal/decomperr"
	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/space"
)

func namedRangeList(elemID int, rl *space.RangeList) *Element {
	e := EncodeRangeList(rl)
	e.ID = elemID
	return e
}

// EncodeProtoModel builds a <prototype> element carrying m's
// ranges-and-entries definition: <input>/<output> (one <pentry> per
// m.Input/Output entry, in order), <likelytrash>, <internal_storage>,
// <localrange>, <paramrange>, plus the hasthis/constructor/
// stackgrowth/inject attributes. FuncProto-level attributes
// (extrapop, dotdotdot, locks) are layered on by EncodeFuncProto,
// which embeds this element's children under its own <prototype>.
func EncodeProtoModel(m *proto.ProtoModel) *Element {
	el := NewElement(ElemPrototype)
	el.SetString(AttrModel, m.Name)
	el.SetBool(AttrHasThis, m.HasThis)
	el.SetBool(AttrConstructor, m.IsConstruct)
	el.SetInt(AttrStackGrowth, int64(m.StackGrowth))
	el.SetInt(AttrInjectEntry, int64(m.InjectUponEntry))
	el.SetInt(AttrInjectReturn, int64(m.InjectUponReturn))

	input := NewElement(ElemInput)
	for _, e := range m.Input.Entries() {
		input.AddChild(EncodePentry(e))
	}
	el.AddChild(input)

	output := NewElement(ElemOutput)
	for _, e := range m.Output.Entries() {
		output.AddChild(EncodePentry(e))
	}
	el.AddChild(output)

	el.AddChild(namedRangeList(ElemLikelyTrash, m.LikelyTrash))
	el.AddChild(namedRangeList(ElemInternalStorage, m.InternalStore))
	el.AddChild(namedRangeList(ElemLocalRange, m.LocalRange))
	el.AddChild(namedRangeList(ElemParamRange, m.ParamRange))
	return el
}

// DecodeProtoModel reads a <prototype> element back into a ProtoModel.
// Input/Output are reconstructed as ParamListStandard over the decoded
// pentries -- the wire format carries entries, not the ParamList
// implementation's resource-assignment behavior, so round-tripping
// preserves "same entries in order" (spec.md §8) rather than the
// original concrete ParamList type.
func DecodeProtoModel(el *Element, resolver SpaceResolver) (*proto.ProtoModel, error) {
	if el.ID != ElemPrototype {
		return nil, decomperr.NewLowLevelError(decomperr.ErrMalformedPrototype, "decodeProtoModel: not a prototype element")
	}
	name, _ := el.String(AttrModel)
	stackGrowth, _ := el.Int(AttrStackGrowth)
	injectEntry, _ := el.Int(AttrInjectEntry)
	injectReturn, _ := el.Int(AttrInjectReturn)

	m := &proto.ProtoModel{
		Name:             name,
		HasThis:          el.Bool(AttrHasThis),
		IsConstruct:      el.Bool(AttrConstructor),
		StackGrowth:      proto.StackGrowth(stackGrowth),
		InjectUponEntry:  int(injectEntry),
		InjectUponReturn: int(injectReturn),
	}

	var err error
	if c, ok := el.FirstChild(ElemLikelyTrash); ok {
		if m.LikelyTrash, err = DecodeRangeList(retagged(c, ElemRangeList), resolver); err != nil {
			return nil, err
		}
	}
	if c, ok := el.FirstChild(ElemInternalStorage); ok {
		if m.InternalStore, err = DecodeRangeList(retagged(c, ElemRangeList), resolver); err != nil {
			return nil, err
		}
	}
	if c, ok := el.FirstChild(ElemLocalRange); ok {
		if m.LocalRange, err = DecodeRangeList(retagged(c, ElemRangeList), resolver); err != nil {
			return nil, err
		}
	}
	if c, ok := el.FirstChild(ElemParamRange); ok {
		if m.ParamRange, err = DecodeRangeList(retagged(c, ElemRangeList), resolver); err != nil {
			return nil, err
		}
	}

	// The stack space (if any) is whatever space the declared param
	// window lives in -- that's the only context available at this
	// layer to check a decoded pentry's storage against m.StackGrowth.
	var stackSpace *space.AddrSpace
	if m.ParamRange != nil {
		if ranges := m.ParamRange.Ranges(); len(ranges) > 0 {
			stackSpace = ranges[0].Space
		}
	}

	inputEl, ok := el.FirstChild(ElemInput)
	if !ok {
		return nil, decomperr.NewLowLevelError(decomperr.ErrMalformedPrototype, "decodeProtoModel: missing <input>")
	}
	inEntries, err := decodePentries(inputEl, resolver, m.StackGrowth, stackSpace)
	if err != nil {
		return nil, err
	}
	m.Input = proto.NewParamListStandard(inEntries)

	outputEl, ok := el.FirstChild(ElemOutput)
	if !ok {
		return nil, decomperr.NewLowLevelError(decomperr.ErrMalformedPrototype, "decodeProtoModel: missing <output>")
	}
	outEntries, err := decodePentries(outputEl, resolver, m.StackGrowth, stackSpace)
	if err != nil {
		return nil, err
	}
	m.Output = proto.NewParamListStandard(outEntries)

	return m, nil
}

// retagged returns a shallow copy of e with its element id replaced,
// so a namedRangeList child (tagged e.g. ElemLocalRange) can be fed
// back through DecodeRangeList, which expects ElemRangeList.
func retagged(e *Element, id int) *Element {
	return &Element{ID: id, Attrs: e.Attrs, Children: e.Children}
}

// decodePentries decodes every <pentry> child of parent, checking each
// newly decoded entry against the ones already decoded in the same
// list: an overlap with an earlier entry outside a shared group is
// illegal (spec.md §7), and -- for entries living in the stack space --
// successive bases must move consistently with growth, or the entry's
// size contradicts the declared stack-growth direction.
func decodePentries(parent *Element, resolver SpaceResolver, growth proto.StackGrowth, stackSpace *space.AddrSpace) ([]*proto.ParamEntry, error) {
	var out []*proto.ParamEntry
	var lastStackBase uint64
	haveLastStack := false
	for _, c := range parent.ChildrenOf(ElemPentry) {
		pe, err := DecodePentry(c, resolver)
		if err != nil {
			return nil, err
		}

		for _, prior := range out {
			if pe.Join == nil && prior.Join == nil && pe.Overlaps(prior) && !shareGroup(pe, prior) {
				return nil, decomperr.NewLowLevelError(decomperr.ErrIllegalPentryOverlap, "decodePentries: overlapping pentries outside a shared group")
			}
		}

		if stackSpace != nil && pe.Space == stackSpace {
			if haveLastStack {
				switch growth {
				case proto.StackGrowsNegative:
					if pe.Base > lastStackBase {
						return nil, decomperr.NewLowLevelError(decomperr.ErrWrongStackGrowthDirection, "decodePentries")
					}
				case proto.StackGrowsPositive:
					if pe.Base < lastStackBase {
						return nil, decomperr.NewLowLevelError(decomperr.ErrWrongStackGrowthDirection, "decodePentries")
					}
				}
			}
			lastStackBase = pe.Base
			haveLastStack = true
		}

		out = append(out, pe)
	}
	return out, nil
}

// shareGroup reports whether a and b have at least one group id in
// common -- an intentional overlap (e.g. aliasing exclusion slots),
// as opposed to an unintentional one.
func shareGroup(a, b *proto.ParamEntry) bool {
	if a.Groups == nil || b.Groups == nil {
		return false
	}
	for _, g := range a.Groups.ToSlice() {
		if b.Groups.Contains(g) {
			return true
		}
	}
	return false
}

// FuncProtoData is the FuncProto-level attribute set layered onto a
// <prototype> element's model definition: extrapop, dotdotdot, and the
// facet locks, per spec.md §6's literal attribute list.
type FuncProtoData struct {
	Model       *proto.ProtoModel
	ExtraPop    int
	DotDotDot   bool
	ModelLock   bool
	VoidLock    bool
	Inline      bool
	NoReturn    bool
	Constructor bool
}

// EncodeFuncProto builds a <prototype> element for d, embedding d.Model's
// definition and adding the FuncProto-level attributes.
func EncodeFuncProto(d FuncProtoData) *Element {
	el := EncodeProtoModel(d.Model)
	el.SetInt(AttrExtrapop, int64(d.ExtraPop))
	el.SetBool(AttrDotDotDot, d.DotDotDot)
	el.SetBool(AttrModelLock, d.ModelLock)
	el.SetBool(AttrVoidLock, d.VoidLock)
	el.SetBool(AttrInline, d.Inline)
	el.SetBool(AttrNoReturn, d.NoReturn)
	if d.Constructor {
		el.SetBool(AttrConstructor, true)
	}
	return el
}

// DecodeFuncProto reads a <prototype> element back into FuncProtoData.
func DecodeFuncProto(el *Element, resolver SpaceResolver) (FuncProtoData, error) {
	model, err := DecodeProtoModel(el, resolver)
	if err != nil {
		return FuncProtoData{}, err
	}
	extrapop, _ := el.Int(AttrExtrapop)
	return FuncProtoData{
		Model:       model,
		ExtraPop:    int(extrapop),
		DotDotDot:   el.Bool(AttrDotDotDot),
		ModelLock:   el.Bool(AttrModelLock),
		VoidLock:    el.Bool(AttrVoidLock),
		Inline:      el.Bool(AttrInline),
		NoReturn:    el.Bool(AttrNoReturn),
		Constructor: el.Bool(AttrConstructor),
	}, nil
}

// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package proto implements the declarative ABI model used to recover a
// function's parameter and return storage: ParamEntry storage windows,
// the four ParamList variants (standard, register, standard-out,
// register-out) plus their merged-model selector, ProtoModel, and the
// mutable per-function FuncProto built on top of it.
package proto

// FacetSymbolCategory is the symbol-category sentinel the dynamic-hash
// "union facet" resolution path checks a candidate symbol against
// before trusting its storage facet. Named here rather than left as an
// inline literal at each call site.
const FacetSymbolCategory = 2

// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Command pcodeinspect decodes a wire-encoded <prototype> or <pentry>
// blob and renders it as tables.
//
// Usage:
//
//	pcodeinspect [flags] <file>
//
// Flags:
//
//	-kind <kind>   What the file decodes to: prototype, pentry (default: prototype)
//	-version       Print version and exit
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/wire"
)

const version = "0.1.0"

func main() {
	var (
		kind = flag.String("kind", "prototype", "What the file decodes to: prototype, pentry")
		ver  = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *ver {
		fmt.Printf("pcodeinspect %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: pcodeinspect [flags] <file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	el, err := wire.DecodeFromBytes(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: decoding element stream: %v\n", err)
		os.Exit(1)
	}

	resolver := newStaticSpaces()

	switch *kind {
	case "prototype":
		inspectPrototype(el, resolver)
	case "pentry":
		inspectPentry(el, resolver)
	default:
		fmt.Fprintf(os.Stderr, "unknown kind: %s\n", *kind)
		os.Exit(1)
	}
}

func inspectPrototype(el *wire.Element, resolver wire.SpaceResolver) {
	d, err := wire.DecodeFuncProto(el, resolver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: decoding prototype: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("model: %s  extrapop: %d  dotdotdot: %v  noreturn: %v\n",
		d.Model.Name, d.ExtraPop, d.DotDotDot, d.NoReturn)

	printPentryTable(os.Stdout, "input parameters", d.Model.Input.Entries())
	printPentryTable(os.Stdout, "output parameters", d.Model.Output.Entries())
	printRangeListTable(os.Stdout, "likely trash", d.Model.LikelyTrash)
	printRangeListTable(os.Stdout, "local range", d.Model.LocalRange)
}

func inspectPentry(el *wire.Element, resolver wire.SpaceResolver) {
	pe, err := wire.DecodePentry(el, resolver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: decoding pentry: %v\n", err)
		os.Exit(1)
	}
	printPentryTable(os.Stdout, "parameter entry", []*proto.ParamEntry{pe})
}

// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package main

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/space"
)

func printPentryTable(w io.Writer, title string, entries []*proto.ParamEntry) {
	io.WriteString(w, title+"\n")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"space", "base", "size", "minsize", "align", "typeclass", "groups"})
	for _, e := range entries {
		spaceName := "<join>"
		base := ""
		if e.Space != nil {
			spaceName = e.Space.Name
			base = "0x" + strconv.FormatUint(e.Base, 16)
		}
		table.Append([]string{
			spaceName,
			base,
			strconv.Itoa(e.Size),
			strconv.Itoa(e.MinSize),
			strconv.Itoa(e.Alignment),
			strconv.Itoa(e.TypeClass),
			groupsString(e),
		})
	}
	table.Render()
}

func groupsString(e *proto.ParamEntry) string {
	if e.Groups == nil {
		return ""
	}
	out := ""
	for i, g := range e.Groups.ToSlice() {
		if i > 0 {
			out += ","
		}
		out += strconv.Itoa(g)
	}
	return out
}

func printRangeListTable(w io.Writer, title string, rl *space.RangeList) {
	io.WriteString(w, title+"\n")
	if rl == nil {
		io.WriteString(w, "  (none)\n")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"space", "first", "last"})
	for _, r := range rl.Ranges() {
		table.Append([]string{
			r.Space.Name,
			"0x" + strconv.FormatUint(r.First, 16),
			"0x" + strconv.FormatUint(r.Last, 16),
		})
	}
	table.Render()
}

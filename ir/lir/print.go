package lir

import (
	"fmt"
	"strings"
)

// String renders the whole Module as a flat listing: one line per global
// VarDef, then one method per paragraph. This is the format the
// `decafir dump` CLI command and the fixture package's snapshot test both
// render against, so a change in instruction selection or label/register
// numbering shows up as a diff.
func (m *Module) String() string {
	var sb strings.Builder
	for _, v := range m.VarDefs {
		fmt.Fprintf(&sb, "global %s: %s\n", v.Name, v.Type)
	}
	for _, md := range m.MethodDefs {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(md.String())
	}
	return sb.String()
}

// String renders one method's signature followed by its instruction
// listing, one instruction per line.
func (m *MethodDef) String() string {
	var sb strings.Builder
	argNames := make([]string, len(m.Args))
	for i, a := range m.Args {
		argNames[i] = fmt.Sprintf("%s: %s", a.Name, a.Type)
	}
	fmt.Fprintf(&sb, "method %s(%s) -> %s:\n", m.Name, strings.Join(argNames, ", "), m.ReturnType)
	for _, inst := range m.Insts {
		if inst.Kind() == KindLabel {
			fmt.Fprintf(&sb, "%s\n", inst.String())
			continue
		}
		fmt.Fprintf(&sb, "    %s\n", inst.String())
	}
	return sb.String()
}

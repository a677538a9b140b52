package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/sunholo/wasmc/internal/wasmir"
)

// fnSummary/globalSummary/moduleSummary are the default (non---full) view of
// an emitted module: every section's entries, without descending into
// function bodies. Since WAT/binary encoding is out of scope, the emitted
// wasmir.Module tree *is* the deliverable to inspect, not bytes to execute —
// --full marshals it verbatim (every wasmir.Expr field is already plain
// exported data) for that deeper inspection.
type fnSummary struct {
	Name     string   `json:"name"`
	Params   []string `json:"params"`
	Result   string   `json:"result"`
	Locals   int      `json:"locals"`
	Exported string   `json:"exported,omitempty"`
}

type globalSummary struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Mutable  bool   `json:"mutable"`
	Exported string `json:"exported,omitempty"`
	Imported bool   `json:"imported"`
}

type moduleSummary struct {
	Functions []fnSummary     `json:"functions"`
	Globals   []globalSummary `json:"globals"`
	Imports   int             `json:"imports"`
	Segments  int             `json:"segments"`
	Start     string          `json:"start,omitempty"`
}

func summarize(m *wasmir.Module) moduleSummary {
	s := moduleSummary{Imports: len(m.Imports), Segments: len(m.Segments), Start: m.StartFunction}
	for _, fn := range m.Functions {
		params := make([]string, len(fn.Sig.Params))
		for i, p := range fn.Sig.Params {
			params[i] = p.String()
		}
		s.Functions = append(s.Functions, fnSummary{
			Name: fn.Name, Params: params, Result: fn.Sig.Result.String(),
			Locals: len(fn.Locals), Exported: fn.Exported,
		})
	}
	for _, g := range m.Globals {
		s.Globals = append(s.Globals, globalSummary{
			Name: g.Name, Type: g.Type.String(), Mutable: g.Mutable,
			Exported: g.Exported, Imported: g.Imported,
		})
	}
	return s
}

func dumpModule(m *wasmir.Module, full, asJSON bool) error {
	if full {
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	s := summarize(m)
	if asJSON {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, fn := range s.Functions {
		exp := ""
		if fn.Exported != "" {
			exp = " " + dim("export="+fn.Exported)
		}
		fmt.Printf("  %s %s(%s) -> %s%s\n", cyan("func"), fn.Name, joinStrings(fn.Params), fn.Result, exp)
	}
	for _, g := range s.Globals {
		mut := "const"
		if g.Mutable {
			mut = "mut"
		}
		fmt.Printf("  %s %s %s: %s\n", cyan("global"), mut, g.Name, g.Type)
	}
	if s.Start != "" {
		fmt.Printf("  %s %s\n", cyan("start"), s.Start)
	}
	return nil
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

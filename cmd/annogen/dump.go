package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"annogen/internal/driver"
	"annogen/internal/store"
)

var dumpCmd = &cobra.Command{
	Use:   "dump OUTPUT",
	Short: "Print the lists, templates and invocations recorded in an output file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		st, err := driver.LoadState(cmd.Context(), args[0], s.cfg)
		if err != nil {
			return s.report(cmd.ErrOrStderr(), err)
		}
		writeDump(cmd.OutOrStdout(), st)
		return nil
	},
}

// table collects rows and pads every column to its widest cell. Widths are
// measured in terminal cells so wide runes in values stay aligned.
type table struct {
	head []string
	rows [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.head))
	for i, h := range t.head {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	bold := color.New(color.Bold)
	line := func(cells []string, style *color.Color) {
		var b strings.Builder
		for i, c := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(c)
				continue
			}
			b.WriteString(runewidth.FillRight(c, widths[i]))
		}
		text := strings.TrimRight(b.String(), " ")
		if style != nil {
			text = style.Sprint(text)
		}
		fmt.Fprintln(w, text)
	}
	line(t.head, bold)
	for _, r := range t.rows {
		line(r, nil)
	}
}

func writeDump(w io.Writer, st *store.State) {
	section := color.New(color.FgCyan, color.Bold)

	section.Fprintf(w, "lists (%d)\n", st.Lists.Len())
	lists := &table{head: []string{"LIST", "VALUE", "FROM"}}
	for _, l := range st.Lists.All() {
		for _, it := range l.Items {
			lists.add(l.Name, it.Value, it.Pos.String())
		}
	}
	lists.write(w)

	fmt.Fprintln(w)
	section.Fprintf(w, "templates (%d)\n", st.Templates.Len())
	tpls := &table{head: []string{"TEMPLATE", "PARAMS", "ALSO", "DEFINES"}}
	for _, t := range st.Templates.All() {
		params := make([]string, 0, len(t.Positionals))
		for _, p := range t.Positionals {
			params = append(params, "$"+string(p.Letter))
		}
		tpls.add(t.Name, strings.Join(params, ","), fmt.Sprint(len(t.Also)), t.OutputName)
	}
	tpls.write(w)

	fmt.Fprintln(w)
	section.Fprintf(w, "invocations (%d)\n", st.Invocations.Len())
	invs := &table{head: []string{"TEMPLATE", "AT", "ARGS"}}
	for _, inv := range st.Invocations.All() {
		args := make([]string, len(inv.Args))
		for i, a := range inv.Args {
			args[i] = fmt.Sprintf("%q", a)
		}
		invs.add(inv.Name, inv.Pos.String(), strings.Join(args, ", "))
	}
	invs.write(w)
}

package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type printer struct {
	out    io.Writer
	format string
}

func (p *printer) records(columns []string, records []resource.Record) error {
	if p.format == FormatJSON {
		if records == nil {
			records = []resource.Record{}
		}
		return p.json(records)
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range records {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = resource.StringOf(r[c])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func (p *printer) record(columns []string, r resource.Record) error {
	if p.format == FormatJSON {
		return p.json(r)
	}
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	for _, c := range columns {
		fmt.Fprintf(w, "%s:\t%s\n", c, resource.StringOf(r[c]))
	}
	for _, c := range []string{"created_at", "updated_at"} {
		if v, ok := r[c]; ok && v != nil {
			fmt.Fprintf(w, "%s:\t%s\n", c, resource.StringOf(v))
		}
	}
	return w.Flush()
}

func (p *printer) message(format string, args ...any) {
	if p.format == FormatJSON {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// failed turns an unsuccessful result into a command error.
func failed(res resource.Result) error {
	if res.Success {
		return nil
	}
	return fmt.Errorf("%s: %s", res.Kind, res.Error)
}

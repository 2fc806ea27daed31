package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

const shellHelp = `commands:
  ls                       show the current list
  reload                   fetch the list again
  search TERM              search (empty TERM clears)
  filter FIELD=VALUE...    set filters (FIELD= clears one)
  sort FIELD [desc]        sort the list
  view ID | edit ID        open a record
  add FIELD=VALUE...       create a record
  set FIELD=VALUE...       save changes to the record being edited
  rm ID                    ask to delete a record
  yes                      confirm the pending delete
  close                    close the open record
  status                   show pending operations
  quit`

func (a *app) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell KIND",
		Short: "Browse and edit one kind interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			view := &textView{out: cmd.OutOrStdout(), kind: kind.Label}
			orch, err := a.backend.orchestrator(ctx, kind, view, true)
			if err != nil {
				return err
			}
			defer orch.Close()

			s := &shell{app: a, kind: kind, orch: orch, view: view, out: cmd.OutOrStdout()}
			return s.run(ctx, a.in)
		},
	}
}

type shell struct {
	app  *app
	kind *entities.Kind
	orch *resource.Orchestrator
	view *textView
	out  io.Writer
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	s.report(s.orch.LoadAll(ctx))
	s.ls()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(s.out, "%s> ", s.kind.Name)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		if verb == "quit" || verb == "exit" {
			return nil
		}
		if err := s.exec(ctx, verb, rest); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *shell) exec(ctx context.Context, verb, rest string) error {
	switch verb {
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "ls":
		s.ls()
	case "reload":
		s.report(s.orch.LoadAll(ctx))
		s.ls()
	case "search":
		s.report(s.orch.Search(ctx, rest))
		s.settle()
		s.ls()
	case "filter":
		patch, err := parseAssignments(strings.Fields(rest))
		if err != nil {
			return err
		}
		s.orch.SetFilters(stringMap(patch))
		s.ls()
	case "sort":
		field, dir, _ := strings.Cut(rest, " ")
		s.orch.SetSort(field, resource.ParseDirection(strings.TrimSpace(dir)))
		s.ls()
	case "view", "edit":
		if rest == "" {
			return fmt.Errorf("%s needs an id", verb)
		}
		row := resource.Record{resource.IDField: rest}
		var res resource.Result
		if verb == "view" {
			res = s.orch.OpenView(ctx, row)
		} else {
			res = s.orch.OpenEdit(ctx, row)
		}
		if err := failed(res); err != nil {
			return err
		}
		return s.app.printer.record(s.kind.Columns, s.orch.Current())
	case "add":
		data, err := parseAssignments(strings.Fields(rest))
		if err != nil {
			return err
		}
		s.orch.OpenAdd()
		s.report(s.orch.Create(ctx, data))
	case "set":
		modal, row := s.view.Open()
		if modal != resource.ModalEdit || row == nil {
			return fmt.Errorf("no record is being edited")
		}
		patch, err := parseAssignments(strings.Fields(rest))
		if err != nil {
			return err
		}
		s.report(s.orch.Update(ctx, row.ID(), patch))
	case "rm":
		item := s.find(rest)
		if item == nil {
			return fmt.Errorf("no %s with id %q in the list", s.kind.Label, rest)
		}
		s.orch.OpenDelete(item)
	case "yes":
		modal, row := s.view.Open()
		if modal != resource.ModalDelete || row == nil {
			return fmt.Errorf("nothing to confirm")
		}
		s.report(s.orch.Delete(ctx, row.ID()))
	case "close":
		s.orch.CloseModal()
	case "status":
		for _, op := range resource.AllOps {
			st := s.orch.State(op)
			if st.Status == resource.StatusIdle {
				continue
			}
			fmt.Fprintf(s.out, "%-10s %s %s\n", op, st.Status, st.Error)
		}
	default:
		return fmt.Errorf("unknown command %q (try help)", verb)
	}
	return nil
}

func (s *shell) ls() {
	_ = s.app.printer.records(s.kind.Columns, s.orch.DisplayList())
}

func (s *shell) find(id string) resource.Record {
	for _, item := range s.orch.Items() {
		if item.ID() == id {
			return item
		}
	}
	return nil
}

// settle waits out a debounced search so the listing reflects it.
func (s *shell) settle() {
	if !s.app.cfg.Client.RemoteSearch || s.app.cfg.Client.SearchDebounce <= 0 {
		return
	}
	deadline := time.Now().Add(s.app.cfg.Client.SearchDebounce + s.app.cfg.Client.APITimeout)
	time.Sleep(s.app.cfg.Client.SearchDebounce + 50*time.Millisecond)
	for s.orch.IsPending(resource.OpSearch) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}

func (s *shell) report(res resource.Result) bool {
	if err := failed(res); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	return true
}

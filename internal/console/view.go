package console

import (
	"fmt"
	"io"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// textView reports modal intents as lines of text. It wraps ModalState so
// the shell can ask what is open.
type textView struct {
	resource.ModalState
	out  io.Writer
	kind string
}

var _ resource.ViewCoordinator = (*textView)(nil)

func (v *textView) OpenAdd() {
	v.ModalState.OpenAdd()
	fmt.Fprintf(v.out, "[new %s]\n", v.kind)
}

func (v *textView) OpenView(record resource.Record) {
	v.ModalState.OpenView(record)
	fmt.Fprintf(v.out, "[view %s %s]\n", v.kind, record.ID())
}

func (v *textView) OpenEdit(record resource.Record) {
	v.ModalState.OpenEdit(record)
	fmt.Fprintf(v.out, "[edit %s %s]\n", v.kind, record.ID())
}

func (v *textView) OpenDelete(record resource.Record) {
	v.ModalState.OpenDelete(record)
	fmt.Fprintf(v.out, "[delete %s %s?]\n", v.kind, record.ID())
}

func (v *textView) CloseModal() {
	modal, _ := v.ModalState.Open()
	v.ModalState.CloseModal()
	if modal != resource.ModalNone {
		fmt.Fprintf(v.out, "[closed %s]\n", modal)
	}
}

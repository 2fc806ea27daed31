package resource

import "sync"

// ViewCoordinator receives modal intents from the orchestrator.
type ViewCoordinator interface {
	OpenAdd()
	OpenView(record Record)
	OpenEdit(record Record)
	OpenDelete(record Record)
	CloseModal()
}

// Modal identifies which dialog is open.
type Modal string

const (
	ModalNone   Modal = ""
	ModalAdd    Modal = "add"
	ModalView   Modal = "view"
	ModalEdit   Modal = "edit"
	ModalDelete Modal = "delete"
)

// ModalState is a ViewCoordinator that only remembers what is open.
type ModalState struct {
	mu     sync.Mutex
	open   Modal
	row    Record
	closes int
}

var _ ViewCoordinator = (*ModalState)(nil)

func (m *ModalState) OpenAdd() { m.set(ModalAdd, nil) }

func (m *ModalState) OpenView(record Record) { m.set(ModalView, record) }

func (m *ModalState) OpenEdit(record Record) { m.set(ModalEdit, record) }

func (m *ModalState) OpenDelete(record Record) { m.set(ModalDelete, record) }

func (m *ModalState) CloseModal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = ModalNone
	m.row = nil
	m.closes++
}

func (m *ModalState) set(modal Modal, record Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = modal
	m.row = record.Clone()
}

// Open returns the open modal and the row it was opened for.
func (m *ModalState) Open() (Modal, Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open, m.row.Clone()
}

// Closes counts CloseModal calls.
func (m *ModalState) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

type noopView struct{}

func (noopView) OpenAdd()          {}
func (noopView) OpenView(Record)   {}
func (noopView) OpenEdit(Record)   {}
func (noopView) OpenDelete(Record) {}
func (noopView) CloseModal()       {}

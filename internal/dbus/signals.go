package dbus

import (
	"fmt"

	"github.com/jmylchreest/quicknote/internal/model"
)

// EmitNoteChanged emits the NoteChanged signal.
// This signal is emitted when the note file changes on disk.
func (s *Service) EmitNoteChanged() error {
	if s.emitter == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := s.emitter.Emit(ServicePath, ServiceInterface+".NoteChanged"); err != nil {
		return fmt.Errorf("failed to emit NoteChanged signal: %w", err)
	}

	s.logger.Debug("emitted NoteChanged signal")
	return nil
}

// EmitStateChanged emits the StateChanged signal with the new overlay state.
func (s *Service) EmitStateChanged(state model.VisibilityState) error {
	if s.emitter == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := s.emitter.Emit(ServicePath, ServiceInterface+".StateChanged", state.String()); err != nil {
		return fmt.Errorf("failed to emit StateChanged signal: %w", err)
	}

	s.logger.Debug("emitted StateChanged signal", "state", state.String())
	return nil
}

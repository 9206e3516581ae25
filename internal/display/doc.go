// Package display implements the GTK4 overlay window that hosts the note.
// It satisfies platform.Window for the hotkey controller, places the window
// on the Wayland overlay layer via layer-shell, and keeps the editor in sync
// with the note store.
package display

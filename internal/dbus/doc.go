// Package dbus exposes the quicknote invoke surface on the D-Bus session bus.
// The daemon exports io.github.jmylchreest.QuickNote with SaveNote, LoadNote,
// ShowNotification, Toggle, State and Invoke; the CLI uses Client to reach it.
package dbus

// Package daemon provides the supporting services of quicknoted:
// configuration hot-reload and self-notifications about daemon events.
package daemon

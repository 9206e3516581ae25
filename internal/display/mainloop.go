package display

import (
	"fmt"
	"time"

	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/quicknote/internal/platform"
)

// mainLoopTimeout bounds how long a caller waits for the GTK main loop.
const mainLoopTimeout = 2 * time.Second

// onMain runs fn on the GTK main loop and waits for it to finish.
// GTK widgets may only be touched from the main loop; when the caller is
// already on it, fn runs inline.
func onMain(fn func() error) error {
	if glib.MainContextDefault().IsOwner() {
		return fn()
	}

	done := make(chan error, 1)
	glib.IdleAdd(func() {
		done <- fn()
	})

	select {
	case err := <-done:
		return err
	case <-time.After(mainLoopTimeout):
		return fmt.Errorf("%w: main loop did not respond within %s", platform.ErrWindowGone, mainLoopTimeout)
	}
}

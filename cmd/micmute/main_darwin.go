//go:build darwin

package main

import (
	"golang.design/x/mainthread"

	"github.com/Danondso/micmute/internal/app"
)

// Surface updates are dispatched onto the process main thread.
func main() {
	mainthread.Init(Execute)
}

func uiDispatcher() app.Dispatcher {
	return app.DispatchFunc(mainthread.Go)
}

//go:build !darwin

package main

import "github.com/Danondso/micmute/internal/app"

func main() {
	Execute()
}

// uiDispatcher runs surface updates inline; the Bubble Tea loop serializes
// them through Program.Send.
func uiDispatcher() app.Dispatcher {
	return app.Inline
}

package main

import (
	"log"

	"leveltracker.gg/internal/session"
)

// logActivator stands in for the engine's activation surface. Opens are
// acknowledged immediately; streamed instances report shown on the next
// pass through the command loop, which keeps the full session lifecycle
// running end to end without an engine attached.
type logActivator struct {
	log      *log.Logger
	dispatch func(func())
}

func (a *logActivator) OpenLevel(levelPkg string) error {
	a.log.Printf("open level %s", levelPkg)
	return nil
}

func (a *logActivator) InstantiateStreamed(levelPkg string, p session.InstanceParams) (session.StreamedInstance, bool) {
	a.log.Printf("instantiate %s at %+v", levelPkg, p.Transform.Position)
	inst := &logInstance{log: a.log, level: levelPkg}
	a.dispatch(func() {
		inst.shown = true
		if inst.onShown != nil {
			inst.onShown()
		}
	})
	return inst, true
}

type logInstance struct {
	log     *log.Logger
	level   string
	shown   bool
	onShown func()
}

func (i *logInstance) RequestUnload()    { i.log.Printf("unload instance %s", i.level) }
func (i *logInstance) OnShown(fn func()) { i.onShown = fn }
func (i *logInstance) Shown() bool       { return i.shown }

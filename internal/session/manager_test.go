package session_test

import (
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/loader"
	"leveltracker.gg/internal/preloaddb"
	"leveltracker.gg/internal/rules"
	"leveltracker.gg/internal/session"
)

type fakeInstance struct {
	shown    bool
	onShown  func()
	unloaded int
}

func (i *fakeInstance) RequestUnload()    { i.unloaded++ }
func (i *fakeInstance) OnShown(fn func()) { i.onShown = fn }
func (i *fakeInstance) Shown() bool       { return i.shown }

type fakeActivator struct {
	opened    []string
	refuse    bool
	instances map[string]*fakeInstance
}

func (a *fakeActivator) OpenLevel(level string) error {
	if a.refuse {
		return fmt.Errorf("refused")
	}
	a.opened = append(a.opened, level)
	return nil
}

func (a *fakeActivator) InstantiateStreamed(level string, _ session.InstanceParams) (session.StreamedInstance, bool) {
	if a.refuse {
		return nil, false
	}
	if a.instances == nil {
		a.instances = make(map[string]*fakeInstance)
	}
	inst := &fakeInstance{}
	a.instances[level] = inst
	return inst, true
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func chunkedEntry(level string, size int, assets ...string) preloaddb.Entry {
	r := rules.Default()
	r.UseChunkedPreload = true
	r.ChunkSize = size
	ids := make([]asset.ID, len(assets))
	for i, a := range assets {
		ids[i] = asset.ID(a)
	}
	return preloaddb.Entry{Level: level, GeneratedAt: time.Now(), Assets: ids, Rules: r}
}

func collectEvents(m *session.Manager) (*[]session.ProgressEvent, *[]session.LoadedEvent) {
	var progress []session.ProgressEvent
	var loaded []session.LoadedEvent
	m.SubscribeProgress(func(ev session.ProgressEvent) { progress = append(progress, ev) })
	m.SubscribeLoaded(func(ev session.LoadedEvent) { loaded = append(loaded, ev) })
	return &progress, &loaded
}

func TestOpenLevelEmptyAssetList(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(preloaddb.Entry{Level: "/Game/Maps/Town", Rules: rules.Default()})
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)
	progress, loaded := collectEvents(m)

	if !m.OpenLevel("/Game/Maps/Town", true) {
		t.Fatal("open rejected")
	}
	if len(*progress) != 1 {
		t.Fatalf("progress events = %d, want 1", len(*progress))
	}
	ev := (*progress)[0]
	if ev.Progress != 1 || ev.Loaded != 0 || ev.Total != 0 {
		t.Fatalf("event = %+v, want progress 1.0 with 0/0", ev)
	}
	if len(act.opened) != 1 || act.opened[0] != "/Game/Maps/Town" {
		t.Fatalf("opened = %v", act.opened)
	}
	if len(*loaded) != 1 || m.Sessions() != 0 {
		t.Fatalf("loaded=%d sessions=%d", len(*loaded), m.Sessions())
	}
	if len(ld.Handles) != 0 {
		t.Fatalf("empty set must not hit the loader, handles=%d", len(ld.Handles))
	}
}

func TestOpenLevelChunkedProgress(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(chunkedEntry("/Game/Maps/Town", 2,
		"/Game/A.A", "/Game/B.B", "/Game/C.C", "/Game/D.D", "/Game/E.E"))
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)
	progress, loaded := collectEvents(m)

	if !m.OpenLevel("/Game/Maps/Town", true) {
		t.Fatal("open rejected")
	}
	if len(ld.Handles) != 1 || len(ld.Handles[0].Assets) != 2 {
		t.Fatalf("first chunk = %+v", ld.Handles)
	}

	ld.Handles[0].SetProgress(0.5)
	last := (*progress)[len(*progress)-1]
	if last.Loaded != 1 || last.Total != 5 || last.Progress != 0.2 {
		t.Fatalf("mid-chunk event = %+v", last)
	}

	ld.Handles[0].Complete()
	if len(ld.Handles) != 2 {
		t.Fatalf("second chunk not requested, handles=%d", len(ld.Handles))
	}
	if ld.Handles[0].Released != 1 {
		t.Fatalf("finished chunk handle released %d times", ld.Handles[0].Released)
	}

	ld.Handles[1].Complete()
	last = (*progress)[len(*progress)-1]
	if last.Loaded != 4 || last.Progress != 0.8 {
		t.Fatalf("after chunk 2 = %+v", last)
	}
	if len(ld.Handles) != 3 || len(ld.Handles[2].Assets) != 1 {
		t.Fatalf("last chunk = %+v", ld.Handles)
	}

	ld.Handles[2].Complete()
	last = (*progress)[len(*progress)-1]
	if last.Loaded != 5 || last.Total != 5 || last.Progress != 1 {
		t.Fatalf("final event = %+v", last)
	}
	if len(act.opened) != 1 || len(*loaded) != 1 || m.Sessions() != 0 {
		t.Fatalf("opened=%v loaded=%d sessions=%d", act.opened, len(*loaded), m.Sessions())
	}
}

func TestDuplicateLoadRejected(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(chunkedEntry("/Game/Maps/Town", 2, "/Game/A.A", "/Game/B.B", "/Game/C.C"))
	m := session.NewManager(quiet(), &loader.MemoryLoader{}, &fakeActivator{}, db)

	if !m.OpenLevel("/Game/Maps/Town", true) {
		t.Fatal("first open rejected")
	}
	if m.OpenLevel("/Game/Maps/Town", true) {
		t.Fatal("duplicate open accepted")
	}
	if m.OpenLevel("not-a-package", true) {
		t.Fatal("invalid level accepted")
	}
}

func TestMissingEntryDegrades(t *testing.T) {
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, preloaddb.New())
	progress, loaded := collectEvents(m)

	if !m.OpenLevel("/Game/Maps/Unknown", true) {
		t.Fatal("open rejected")
	}
	if len(*progress) != 1 {
		t.Fatalf("progress events = %d", len(*progress))
	}
	ev := (*progress)[0]
	if ev.Progress != 1 || ev.Loaded != 1 || ev.Total != 1 {
		t.Fatalf("degraded event = %+v, want 1/1 at 1.0", ev)
	}
	if len(act.opened) != 1 || len(*loaded) != 1 {
		t.Fatalf("opened=%v loaded=%d", act.opened, len(*loaded))
	}
	if len(ld.Handles) != 0 {
		t.Fatal("degraded path must not hit the loader")
	}
}

func TestNilDatabaseDegrades(t *testing.T) {
	act := &fakeActivator{}
	m := session.NewManager(quiet(), &loader.MemoryLoader{}, act, nil)
	progress, _ := collectEvents(m)

	if !m.OpenLevel("/Game/Maps/Town", true) {
		t.Fatal("open rejected")
	}
	if len(*progress) != 1 || (*progress)[0].Total != 1 {
		t.Fatalf("events = %+v", *progress)
	}
	if len(act.opened) != 1 {
		t.Fatalf("opened = %v", act.opened)
	}
}

func TestLoaderFailureDegrades(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(chunkedEntry("/Game/Maps/Town", 2, "/Game/A.A", "/Game/B.B", "/Game/C.C"))
	ld := &loader.MemoryLoader{Fail: true}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)
	progress, loaded := collectEvents(m)

	if !m.OpenLevel("/Game/Maps/Town", true) {
		t.Fatal("open rejected")
	}
	ev := (*progress)[len(*progress)-1]
	if ev.Progress != 1 || ev.Loaded != 3 || ev.Total != 3 {
		t.Fatalf("fallback event = %+v", ev)
	}
	if len(act.opened) != 1 || len(*loaded) != 1 {
		t.Fatalf("opened=%v loaded=%d", act.opened, len(*loaded))
	}
}

func TestPreloadDisabledSkipsLoading(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(chunkedEntry("/Game/Maps/Town", 2, "/Game/A.A"))
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)

	if !m.OpenLevel("/Game/Maps/Town", false) {
		t.Fatal("open rejected")
	}
	if len(ld.Handles) != 0 {
		t.Fatal("preload disabled must not hit the loader")
	}
	if len(act.opened) != 1 {
		t.Fatalf("opened = %v", act.opened)
	}
}

func TestStreamedLifecycle(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(chunkedEntry("/Game/Maps/Arena", 8, "/Game/A.A", "/Game/B.B"))
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)
	_, loaded := collectEvents(m)

	p := session.InstanceParams{Transform: session.Transform{Position: [3]float64{10, 0, 5}}}
	if !m.LoadLevelInstance("/Game/Maps/Arena", p, true) {
		t.Fatal("load rejected")
	}
	ld.Handles[0].Complete()

	inst := act.instances["/Game/Maps/Arena"]
	if inst == nil {
		t.Fatal("instance not created")
	}
	if m.Sessions() != 1 {
		t.Fatalf("sessions = %d, want 1 while awaiting shown", m.Sessions())
	}
	if len(*loaded) != 0 {
		t.Fatal("loaded event before shown")
	}

	inst.shown = true
	inst.onShown()
	if len(*loaded) != 1 || (*loaded)[0].Level != "/Game/Maps/Arena" {
		t.Fatalf("loaded = %+v", *loaded)
	}
	if m.Sessions() != 0 {
		t.Fatalf("sessions = %d after shown", m.Sessions())
	}
}

func TestShownSweepsAllVisibleSessions(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(chunkedEntry("/Game/Maps/A", 8, "/Game/A.A"))
	db.Upsert(chunkedEntry("/Game/Maps/B", 8, "/Game/B.B"))
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)
	_, loaded := collectEvents(m)

	m.LoadLevelInstance("/Game/Maps/A", session.InstanceParams{}, true)
	m.LoadLevelInstance("/Game/Maps/B", session.InstanceParams{}, true)
	ld.Handles[0].Complete()
	ld.Handles[1].Complete()

	// Both instances become visible; one engine notification covers
	// them.
	act.instances["/Game/Maps/A"].shown = true
	act.instances["/Game/Maps/B"].shown = true
	act.instances["/Game/Maps/A"].onShown()

	if len(*loaded) != 2 || m.Sessions() != 0 {
		t.Fatalf("loaded=%d sessions=%d", len(*loaded), m.Sessions())
	}
}

func TestUnloadReleasesHandlesOnce(t *testing.T) {
	db := preloaddb.New()
	// Monolithic batch: the session's handle and its chunk handle list
	// alias the same underlying handle.
	e := chunkedEntry("/Game/Maps/Arena", 2, "/Game/A.A", "/Game/B.B")
	e.Rules.UseChunkedPreload = false
	db.Upsert(e)
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)
	var unloaded []string
	m.SubscribeUnloaded(func(ev session.UnloadedEvent) { unloaded = append(unloaded, ev.Level) })

	m.LoadLevelInstance("/Game/Maps/Arena", session.InstanceParams{}, true)
	if !m.UnloadLevelInstance("/Game/Maps/Arena") {
		t.Fatal("unload failed")
	}
	if len(unloaded) != 1 || unloaded[0] != "/Game/Maps/Arena" {
		t.Fatalf("unloaded events = %v", unloaded)
	}
	h := ld.Handles[0]
	if !h.Cancelled {
		t.Fatal("handle not cancelled")
	}
	if h.Released != 1 {
		t.Fatalf("handle released %d times, want 1", h.Released)
	}
	if m.UnloadLevelInstance("/Game/Maps/Arena") {
		t.Fatal("second unload found a session")
	}
}

func TestUnloadAllClearsEverything(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(chunkedEntry("/Game/Maps/A", 8, "/Game/A.A"))
	db.Upsert(chunkedEntry("/Game/Maps/B", 8, "/Game/B.B"))
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)

	m.LoadLevelInstance("/Game/Maps/A", session.InstanceParams{}, true)
	m.LoadLevelInstance("/Game/Maps/B", session.InstanceParams{}, true)
	ld.Handles[0].Complete()

	m.UnloadAll()
	if m.Sessions() != 0 {
		t.Fatalf("sessions = %d", m.Sessions())
	}
	if act.instances["/Game/Maps/A"].unloaded != 1 {
		t.Fatal("resident instance not unloaded")
	}
	if h := ld.Handles[1]; !h.Cancelled || h.Released != 1 {
		t.Fatalf("in-flight handle cancelled=%v released=%d", h.Cancelled, h.Released)
	}
}

func TestTwoSessionsIndependentProgress(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(chunkedEntry("/Game/Maps/A", 8, "/Game/A.A", "/Game/B.B"))
	db.Upsert(chunkedEntry("/Game/Maps/B", 8, "/Game/C.C", "/Game/D.D", "/Game/E.E", "/Game/F.F"))
	ld := &loader.MemoryLoader{}
	act := &fakeActivator{}
	m := session.NewManager(quiet(), ld, act, db)
	progress, _ := collectEvents(m)

	m.OpenLevel("/Game/Maps/A", true)
	m.OpenLevel("/Game/Maps/B", true)

	ld.Handles[1].SetProgress(0.5)
	ld.Handles[0].SetProgress(0.5)

	var gotA, gotB *session.ProgressEvent
	for i := range *progress {
		ev := &(*progress)[i]
		switch ev.Level {
		case "/Game/Maps/A":
			gotA = ev
		case "/Game/Maps/B":
			gotB = ev
		}
	}
	if gotA == nil || gotA.Loaded != 1 || gotA.Total != 2 {
		t.Fatalf("session A event = %+v", gotA)
	}
	if gotB == nil || gotB.Loaded != 2 || gotB.Total != 4 {
		t.Fatalf("session B event = %+v", gotB)
	}
}

func TestActivationFailureIsTerminal(t *testing.T) {
	db := preloaddb.New()
	db.Upsert(preloaddb.Entry{Level: "/Game/Maps/Town", Rules: rules.Default()})
	act := &fakeActivator{refuse: true}
	m := session.NewManager(quiet(), &loader.MemoryLoader{}, act, db)
	_, loaded := collectEvents(m)

	if !m.OpenLevel("/Game/Maps/Town", true) {
		t.Fatal("open rejected")
	}
	if len(*loaded) != 0 {
		t.Fatal("loaded event after refused activation")
	}
	// The session stays tracked but inert. No retry happens.
	if m.Sessions() != 1 {
		t.Fatalf("sessions = %d", m.Sessions())
	}
}
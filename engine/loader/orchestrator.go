package loader

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/preload/engine/assets"
	"github.com/spaghettifunk/preload/engine/core"
	"github.com/spaghettifunk/preload/engine/resources"
)

// Config carries the orchestrator's collaborators. Zero values select the
// built-in resolver, fetchers and logger.
type Config struct {
	Resolver FormatResolver
	Fetchers map[resources.FormatCategory]Fetcher
	Logger   *log.Logger
}

// LoadOrchestrator drives one load run over a manifest: it groups entries
// by logical name, picks the best-supported encoding per group, dispatches
// the fetches concurrently and aggregates byte progress and completion onto
// a handle. All mutable state is owned by a single event loop goroutine;
// fetcher and resolver goroutines only post events, so no handler ever runs
// concurrently with another.
type LoadOrchestrator struct {
	manifest *assets.Manifest
	resolver FormatResolver
	fetchers map[resources.FormatCategory]Fetcher
	logger   *log.Logger

	handle *CompletionHandle
	pack   *resources.Pack

	groups    []assets.Group
	remaining int
	failed    int
	progress  map[string]int64

	events chan event
	quit   chan struct{}
}

type event interface{}

type formatsResolvedEvent struct {
	group   assets.Group
	formats []resources.Format
	err     error
}

type progressEvent struct {
	name  string
	bytes int64
}

// initial distinguishes first loads from hot reloads: only first loads
// count toward the remaining-group bookkeeping.
type loadedEvent struct {
	entry   assets.ResourceEntry
	res     resources.Resource
	initial bool
}

type failedEvent struct {
	entry   assets.ResourceEntry
	err     error
	initial bool
}

type reloadEvent struct {
	url string
}

type reloadReadyEvent struct {
	entry assets.ResourceEntry
}

// New starts a load run over the manifest. The run is observable through
// Handle(); an empty manifest completes successfully right away.
func New(manifest *assets.Manifest, cfg Config) *LoadOrchestrator {
	if cfg.Resolver == nil {
		cfg.Resolver = NewCachedResolver(DefaultResolver())
	}
	if cfg.Fetchers == nil {
		cfg.Fetchers = DefaultFetchers()
	}
	if cfg.Logger == nil {
		cfg.Logger = core.Default()
	}

	o := &LoadOrchestrator{
		manifest: manifest,
		resolver: cfg.Resolver,
		fetchers: cfg.Fetchers,
		logger:   cfg.Logger.With("run", uuid.NewString()),
		handle:   newCompletionHandle(),
		progress: make(map[string]int64),
		events:   make(chan event, 64),
		quit:     make(chan struct{}),
	}
	o.pack = resources.NewPack(o.logger)
	o.groups = manifest.Groups()
	o.remaining = len(o.groups)

	go o.run()

	if len(o.groups) == 0 {
		o.pack.Freeze()
		o.handle.succeed(o.pack)
		return o
	}
	for _, g := range o.groups {
		go o.resolveGroup(g)
	}
	return o
}

// Handle returns the run's completion handle.
func (o *LoadOrchestrator) Handle() *CompletionHandle {
	return o.handle
}

// Pack returns the resource pack being built. Consumers read it after the
// handle reports success.
func (o *LoadOrchestrator) Pack() *resources.Pack {
	return o.pack
}

// Reload requests a hot reload of whichever manifest entry backs the given
// URL. Safe to call from any goroutine; a URL matching nothing is a no-op.
func (o *LoadOrchestrator) Reload(url string) {
	o.post(reloadEvent{url: url})
}

// Close stops the event loop. In-flight fetches finish on their own but no
// further events are handled.
func (o *LoadOrchestrator) Close() {
	close(o.quit)
}

func (o *LoadOrchestrator) run() {
	for {
		select {
		case ev := <-o.events:
			switch ev := ev.(type) {
			case formatsResolvedEvent:
				o.handleFormats(ev)
			case progressEvent:
				o.handleProgress(ev.name, ev.bytes)
			case loadedEvent:
				o.handleLoad(ev)
			case failedEvent:
				o.handleError(ev)
			case reloadEvent:
				o.handleReload(ev.url)
			case reloadReadyEvent:
				o.dispatch(ev.entry, false)
			}
		case <-o.quit:
			return
		}
	}
}

func (o *LoadOrchestrator) post(ev event) {
	select {
	case o.events <- ev:
	case <-o.quit:
	}
}

func (o *LoadOrchestrator) resolveGroup(g assets.Group) {
	formats, err := o.resolver.ResolveFormats(context.Background(), g.Category())
	o.post(formatsResolvedEvent{group: g, formats: formats, err: err})
}

func (o *LoadOrchestrator) handleFormats(ev formatsResolvedEvent) {
	if ev.err != nil {
		o.logger.Warn("format resolution failed", "group", ev.group.Name, "err", ev.err)
	}
	entry, ok := selectEntry(ev.formats, ev.group)
	if !ok {
		o.failSelection(ev.group)
		return
	}
	o.dispatch(entry, true)
}

// selectEntry scans the environment's preferences in order and returns the
// group's entry in the first format that matches.
func selectEntry(formats []resources.Format, g assets.Group) (assets.ResourceEntry, bool) {
	for _, f := range formats {
		for _, e := range g.Entries {
			if e.Format == f {
				return e, true
			}
		}
	}
	return assets.ResourceEntry{}, false
}

func (o *LoadOrchestrator) failSelection(g assets.Group) {
	if g.Category() == resources.CategoryAudio {
		// Missing audio support is a survivable degradation: substitute
		// silence and let the run keep going.
		o.logger.Warn("no supported audio format, substituting silence", "group", g.Name)
		if err := o.pack.Put(g.Name, resources.SilentSound(g.Name)); err != nil {
			o.logger.Error("silent placeholder insert failed", "group", g.Name, "err", err)
			return
		}
		o.resolveOne()
		return
	}
	rep := g.Entries[0]
	o.failed++
	o.handle.emitError(&LoadError{Name: rep.Name, URL: o.manifest.FullURL(rep), Err: ErrUnsupportedFormat})
	o.checkStalled()
}

func (o *LoadOrchestrator) dispatch(entry assets.ResourceEntry, initial bool) {
	fetcher, ok := o.fetchers[entry.Category()]
	if !ok {
		o.handleError(failedEvent{
			entry:   entry,
			err:     fmt.Errorf("no fetcher for category %s", entry.Category()),
			initial: initial,
		})
		return
	}
	url := o.manifest.FullURL(entry)
	if initial {
		o.handle.addTotal(entry.Size)
	}
	go func() {
		// A fault while starting or running the fetch must not take down
		// sibling dispatches; it joins the ordinary failure path.
		defer func() {
			if r := recover(); r != nil {
				o.post(failedEvent{entry: entry, err: fmt.Errorf("dispatch fault: %v", r), initial: initial})
			}
		}()
		res, err := fetcher.Fetch(context.Background(), url, entry, func(n int64) {
			// Reload progress never rewrites a name's finished entry, and a
			// stale declared size must not push aggregate progress past the
			// total.
			if !initial {
				return
			}
			if n > entry.Size {
				n = entry.Size
			}
			o.post(progressEvent{name: entry.Name, bytes: n})
		})
		if err != nil {
			o.post(failedEvent{entry: entry, err: err, initial: initial})
			return
		}
		o.post(loadedEvent{entry: entry, res: res, initial: initial})
	}()
}

// handleProgress overwrites the per-name entry, so a fetcher re-reporting
// the same cumulative count never double-counts.
func (o *LoadOrchestrator) handleProgress(name string, bytes int64) {
	o.progress[name] = bytes
	o.publishProgress()
}

func (o *LoadOrchestrator) publishProgress() {
	var sum int64
	for _, n := range o.progress {
		sum += n
	}
	o.handle.setProgress(sum)
}

func (o *LoadOrchestrator) handleLoad(ev loadedEvent) {
	if existing, ok := o.pack.Lookup(ev.entry.Name); ok {
		// Hot reload: swap content in place so holders of the reference
		// observe the new payload.
		if err := existing.ReplaceContent(ev.res); err != nil {
			o.handle.emitError(&LoadError{Name: ev.entry.Name, URL: o.manifest.FullURL(ev.entry), Err: err})
			return
		}
		// Publishing after the swap gives subscribers a synchronization
		// point: anyone notified afterwards sees the new content.
		o.publishProgress()
		o.logger.Info("reloaded", "name", ev.entry.Name)
		if !ev.initial {
			return
		}
		// An initial load landing after a reload already populated the
		// name still counts toward completion below.
	} else {
		if err := o.pack.Put(ev.entry.Name, ev.res); err != nil {
			o.handleError(failedEvent{entry: ev.entry, err: err, initial: ev.initial})
			return
		}
		if !ev.initial {
			// A reload landed for a name its initial load never produced.
			// The content becomes available, but the run bookkeeping,
			// including this name's progress, stays untouched.
			o.logger.Info("reloaded", "name", ev.entry.Name)
			return
		}
	}
	// The fetcher may have under-reported; force this name to its declared
	// size so aggregate progress reaches 100%.
	o.progress[ev.entry.Name] = ev.entry.Size
	o.publishProgress()
	o.logger.Debug("loaded", "name", ev.entry.Name, "bytes", ev.entry.Size)
	o.resolveOne()
}

func (o *LoadOrchestrator) resolveOne() {
	o.remaining--
	if o.remaining == 0 {
		o.pack.Freeze()
		o.logger.Info("bundle complete", "resources", o.pack.Len())
		o.handle.succeed(o.pack)
		return
	}
	o.checkStalled()
}

func (o *LoadOrchestrator) handleError(ev failedEvent) {
	o.logger.Error("load failed", "name", ev.entry.Name, "err", ev.err)
	o.handle.emitError(&LoadError{Name: ev.entry.Name, URL: o.manifest.FullURL(ev.entry), Err: ev.err})
	if !ev.initial {
		return
	}
	o.failed++
	o.checkStalled()
}

// checkStalled latches the terminal failure once every still-unresolved
// group has failed; nothing can complete the run after that point.
func (o *LoadOrchestrator) checkStalled() {
	if o.failed >= o.remaining {
		o.handle.fail(fmt.Errorf("%w: %d of %d groups", ErrLoadFailed, o.failed, len(o.groups)))
	}
}

func (o *LoadOrchestrator) handleReload(url string) {
	if o.manifest.BasePath != assets.DefaultBasePath {
		o.logger.Debug("reload ignored, manifest not rooted at default base path", "url", url)
		return
	}
	// Cache-busting query strings are ignored on both sides of the match.
	want := assets.StripQuery(url)
	for _, e := range o.manifest.Entries {
		if assets.StripQuery(e.URL) != want && assets.StripQuery(o.manifest.FullURL(e)) != want {
			continue
		}
		go o.reresolve(e, url)
		return
	}
}

// reresolve re-checks format support before a reload dispatch; the entry is
// only re-fetched if its format is still supported.
func (o *LoadOrchestrator) reresolve(entry assets.ResourceEntry, url string) {
	formats, err := o.resolver.ResolveFormats(context.Background(), entry.Category())
	if err != nil {
		o.logger.Warn("reload format resolution failed", "name", entry.Name, "err", err)
		return
	}
	if !slices.Contains(formats, entry.Format) {
		o.logger.Warn("reload skipped, format no longer supported", "name", entry.Name, "format", entry.Format)
		return
	}
	o.post(reloadReadyEvent{entry: assets.ResourceEntry{
		Name:   entry.Name,
		URL:    url,
		Format: entry.Format,
	}})
}

// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package builder_test

import (
	"context"
	"testing"

	"github.com/multiconsole/corefab/addressspace"
	"github.com/multiconsole/corefab/builder"
	"github.com/multiconsole/corefab/component"
	"github.com/multiconsole/corefab/paths"
	"github.com/multiconsole/corefab/registry"
	"github.com/multiconsole/corefab/scheduler"
	"github.com/multiconsole/corefab/test"
)

// ram is a minimal component used to exercise the builder's staged API.
type ram struct {
	path paths.ComponentPath
	data []byte
}

func (r *ram) Path() paths.ComponentPath { return r.path }

func (r *ram) ReadMemory(address uint32, avoidSideEffects bool) (uint8, error) {
	return r.data[address], nil
}

func (r *ram) WriteMemory(address uint32, value uint8) error {
	r.data[address] = value
	return nil
}

// ram has no internal clock of its own; it is registered OnDemand and never
// reports work due, so the scheduler never calls Synchronize on it.
func (r *ram) NeedsWork(delta *scheduler.Period) bool { return false }

func (r *ram) Synchronize(ctx component.SynchronizationContext, delta *scheduler.Period) error {
	return nil
}

type ramConfig struct {
	space addressspace.AddressSpaceId
	rng   addressspace.Range
	size  int
}

func (cfg ramConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	c := &ram{path: ctx.Path(), data: make([]byte, cfg.size)}
	if err := ctx.Fabric().Map(cfg.space, c, cfg.rng, addressspace.RW); err != nil {
		return nil, err
	}
	return c, nil
}

type initTrackingConfig struct {
	ramConfig
	initialized *bool
}

type trackingRAM struct {
	*ram
	initialized *bool
}

func (c *trackingRAM) InitializeGraphics(platformData interface{}) error {
	*c.initialized = true
	return nil
}

func (cfg initTrackingConfig) BuildComponent(ctx *builder.Context) (component.Component, error) {
	base, err := cfg.ramConfig.BuildComponent(ctx)
	if err != nil {
		return nil, err
	}
	return &trackingRAM{ram: base.(*ram), initialized: cfg.initialized}, nil
}

func mustPath(t *testing.T, s string) paths.ComponentPath {
	t.Helper()
	p, err := paths.NewComponentPath(s)
	test.Equate(t, err, nil)
	return p
}

func TestBuildWiresComponentsAndCommitsPageTable(t *testing.T) {
	b := builder.New()
	b, space := b.InsertAddressSpace(16)

	b, _ = b.InsertComponent(mustPath(t, ":component/ram"), scheduler.OnDemand, nil, ramConfig{
		space: space,
		rng:   addressspace.Range{Start: 0, End: 255},
		size:  256,
	})
	test.Equate(t, b.Err(), nil)

	m, err := b.Build(context.Background(), nil, nil)
	test.Equate(t, err, nil)
	test.Equate(t, m.Registry.Len(), 1)

	err = m.Fabric.Write(space, 10, []byte{0x42})
	test.Equate(t, err, nil)

	buf := make([]byte, 1)
	err = m.Fabric.Read(space, 10, false, buf)
	test.Equate(t, err, nil)
	test.Equate(t, buf[0], uint8(0x42))
}

func TestBuildInvokesGraphicsInitializers(t *testing.T) {
	b := builder.New()
	b, space := b.InsertAddressSpace(16)

	initialized := false
	b, _ = b.InsertComponent(mustPath(t, ":component/video"), scheduler.OnDemand, nil, initTrackingConfig{
		ramConfig:   ramConfig{space: space, rng: addressspace.Range{Start: 0, End: 15}, size: 16},
		initialized: &initialized,
	})
	test.Equate(t, b.Err(), nil)

	_, err := b.Build(context.Background(), "platform-handle", nil)
	test.Equate(t, err, nil)
	test.Equate(t, initialized, true)
}

func TestDuplicatePathIsFatal(t *testing.T) {
	b := builder.New()
	b, space := b.InsertAddressSpace(16)

	cfg := ramConfig{space: space, rng: addressspace.Range{Start: 0, End: 15}, size: 16}
	p := mustPath(t, ":component/ram")
	b, _ = b.InsertComponent(p, scheduler.OnDemand, nil, cfg)
	test.Equate(t, b.Err(), nil)

	b, _ = b.InsertComponent(p, scheduler.OnDemand, nil, cfg)
	test.ExpectFailure(t, b.Err())

	// once failed, further staged calls are no-ops: Build must still fail.
	_, err := b.Build(context.Background(), nil, nil)
	test.ExpectFailure(t, err)
}

func TestChildComponentIsScopedBeneathParent(t *testing.T) {
	b := builder.New()
	b, space := b.InsertAddressSpace(16)

	parent := mustPath(t, ":component/cartridge")
	cfg := ramConfig{space: space, rng: addressspace.Range{Start: 0, End: 15}, size: 16}
	b, _ = b.InsertComponent(parent, scheduler.OnDemand, nil, cfg)
	test.Equate(t, b.Err(), nil)

	var childPath paths.ComponentPath
	b, childPath = b.InsertChildComponent(parent, "mapper", scheduler.OnDemand, nil, ramConfig{
		space: space, rng: addressspace.Range{Start: 16, End: 31}, size: 16,
	})
	test.Equate(t, b.Err(), nil)
	test.Equate(t, childPath.String(), ":component/cartridge/mapper")

	m, err := b.Build(context.Background(), nil, nil)
	test.Equate(t, err, nil)
	test.Equate(t, m.Registry.Len(), 2)
}

// TestBuildSurvivesSaveLoadFailure asserts that a mismatched/corrupt save
// archive is logged, not fatal (§4.F): Build still succeeds and the machine
// comes up in its default state.
func TestBuildSurvivesSaveLoadFailure(t *testing.T) {
	b := builder.New()
	b, space := b.InsertAddressSpace(16)
	b, _ = b.InsertComponent(mustPath(t, ":component/ram"), scheduler.OnDemand, nil, ramConfig{
		space: space, rng: addressspace.Range{Start: 0, End: 15}, size: 16,
	})
	test.Equate(t, b.Err(), nil)

	save := &erroringSaveLoader{}
	m, err := b.Build(context.Background(), nil, save)
	test.Equate(t, err, nil)
	test.Equate(t, save.called, true)
	test.Equate(t, m.Registry.Len(), 1)
}

type erroringSaveLoader struct{ called bool }

func (s *erroringSaveLoader) LoadInto(reg *registry.Registry) error {
	s.called = true
	return errMismatch
}

var errMismatch = mismatchErr("save archive does not match this machine")

type mismatchErr string

func (e mismatchErr) Error() string { return string(e) }

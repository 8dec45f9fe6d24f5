package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// FanDevice is the physical fan-coil blower.
type FanDevice interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	SetSpeed(ctx context.Context, speed FanSpeed) error
}

// SwitchActuator addresses one or more switches in a single call.
type SwitchActuator interface {
	TurnOn(ctx context.Context, ids ...string) error
	TurnOff(ctx context.Context, ids ...string) error
}

const defaultCommandTimeout = time.Second * 10

type coordinatorStats struct {
	Commands  int64 `json:"commands"`  // commands issued, batched or single
	Failures  int64 `json:"failures"`  // commands that returned an error
	Fallbacks int64 `json:"fallbacks"` // batches that fell back to per-switch commands
	Plans     int64 `json:"plans"`     // plans applied
}

// ApplyResult is the outcome of one best-effort actuation pass.
type ApplyResult struct {
	Commands  int
	Fallbacks []string
	Errors    []error
}

func (r ApplyResult) Err() error {
	return errors.Join(r.Errors...)
}

func (r *ApplyResult) record(err error) {
	r.Commands++
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

type Coordinator struct {
	fan      FanDevice
	switches SwitchActuator
	cooling  []string
	heating  []string
	timeout  time.Duration

	statsMutex sync.Mutex
	stats      coordinatorStats
}

func NewCoordinator(fan FanDevice, switches SwitchActuator, cooling, heating []string) *Coordinator {
	return &Coordinator{
		fan:      fan,
		switches: switches,
		cooling:  cooling,
		heating:  heating,
		timeout:  defaultCommandTimeout,
	}
}

// ApplyPlan drives the fan and both switch groups toward the plan. Every
// command is an absolute on/off/speed so repeating a plan is harmless.
func (c *Coordinator) ApplyPlan(ctx context.Context, plan ControlPlan) ApplyResult {
	res := ApplyResult{}
	if plan.Noop {
		return res
	}

	if plan.FanSpeed != nil {
		c.setFan(ctx, *plan.FanSpeed, &res)
	}
	c.driveGroup(ctx, "cooling", c.cooling, plan.CoolingOn, &res)
	c.driveGroup(ctx, "heating", c.heating, plan.HeatingOn, &res)

	c.addStats(func(s *coordinatorStats) { s.Plans++ })
	if len(res.Errors) > 0 {
		log.Warnf("plan %s applied with %d error(s): %s", plan, len(res.Errors), res.Err())
	} else {
		log.Debugf("plan %s applied (%d commands)", plan, res.Commands)
	}
	return res
}

// SetFan commands the fan directly, used when the fan mode is pinned.
func (c *Coordinator) SetFan(ctx context.Context, speed FanSpeed) ApplyResult {
	res := ApplyResult{}
	c.setFan(ctx, speed, &res)
	return res
}

func (c *Coordinator) setFan(ctx context.Context, speed FanSpeed, res *ApplyResult) {
	if c.fan == nil {
		return
	}

	if speed == SpeedOff {
		res.record(c.fanCommand(ctx, "turn_off", func(ctx context.Context) error { return c.fan.TurnOff(ctx) }))
		return
	}

	// selecting a speed does not power the fan on, and some devices refuse
	// the speed while off
	err := c.fanCommand(ctx, "turn_on", func(ctx context.Context) error { return c.fan.TurnOn(ctx) })
	res.record(err)
	if err != nil {
		return
	}
	res.record(c.fanCommand(ctx, "set_speed", func(ctx context.Context) error { return c.fan.SetSpeed(ctx, speed) }))
}

func (c *Coordinator) fanCommand(ctx context.Context, op string, fn func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := fn(cctx)
	c.count("fan", op, err)
	if err != nil {
		log.Errorf("fan %s failed: %s", op, err)
		return fmt.Errorf("fan %s: %w", op, err)
	}
	return nil
}

// driveGroup tries one batched command for the whole group and falls back
// to per-switch commands when the batch fails. A failing switch does not
// stop the remaining ones.
func (c *Coordinator) driveGroup(ctx context.Context, group string, ids []string, on bool, res *ApplyResult) {
	if len(ids) == 0 || c.switches == nil {
		return
	}

	op := "turn_off"
	if on {
		op = "turn_on"
	}

	log.Debugf("%s %s switches: %s", op, group, strings.Join(ids, ", "))
	err := c.switchCommand(ctx, op, ids)
	res.Commands++
	if err == nil {
		return
	}

	log.Errorf("error on %s %s switches: %s", op, group, err)
	res.Fallbacks = append(res.Fallbacks, group)
	batchFallbacks.WithLabelValues(group).Inc()
	c.addStats(func(s *coordinatorStats) { s.Fallbacks++ })

	for _, id := range ids {
		log.Debugf("%s %s switch individually: %s", op, group, id)
		err := c.switchCommand(ctx, op, []string{id})
		if err != nil {
			log.Errorf("error on %s switch %s: %s", op, id, err)
			err = fmt.Errorf("%s switch %s: %w", op, id, err)
		}
		res.record(err)
	}
}

func (c *Coordinator) switchCommand(ctx context.Context, op string, ids []string) error {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var err error
	if op == "turn_on" {
		err = c.switches.TurnOn(cctx, ids...)
	} else {
		err = c.switches.TurnOff(cctx, ids...)
	}
	c.count("switch", op, err)
	return err
}

func (c *Coordinator) count(device, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	actuatorCommands.WithLabelValues(device, op, result).Inc()
	c.addStats(func(s *coordinatorStats) {
		s.Commands++
		if err != nil {
			s.Failures++
		}
	})
}

func (c *Coordinator) addStats(fn func(*coordinatorStats)) {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	fn(&c.stats)
}

func (c *Coordinator) Stats() coordinatorStats {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	return c.stats
}

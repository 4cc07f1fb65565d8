package dispatch

import (
	"context"
	"fmt"

	"github.com/argentmirror/argent-core/internal/assistant/fuzzy"
	"github.com/argentmirror/argent-core/internal/assistant/intent"
	"github.com/argentmirror/argent-core/internal/home"
	"github.com/argentmirror/argent-core/internal/infrastructure/logging"
)

// Routine set points.
const (
	morningTemperature = 24.0
	nightTemperature   = 21.0

	positionOpen   = 100
	positionClosed = 0
)

// Outcome classifies how a command was handled.
type Outcome string

// Outcomes.
const (
	// OutcomeExecuted means at least one device was mutated.
	OutcomeExecuted Outcome = "executed"

	// OutcomeAlready means every matched device was already in the
	// requested state; no writes were issued.
	OutcomeAlready Outcome = "already"

	// OutcomeNotFound means no device matched the category and room.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeNotImplemented means the action was recognised but no
	// device-control primitive backs it yet.
	OutcomeNotImplemented Outcome = "not_implemented"

	// OutcomeInvalidParam means a required numeric parameter was absent.
	OutcomeInvalidParam Outcome = "invalid_param"

	// OutcomeFailed means a device write was rejected mid-batch.
	OutcomeFailed Outcome = "failed"
)

// Result is the dispatcher's verdict on one command.
type Result struct {
	Response string  `json:"response"`
	Outcome  Outcome `json:"outcome"`
	Changed  int     `json:"changed"`
}

// Registry is the slice of the home registry the dispatcher needs.
type Registry interface {
	RoomNames() []string
	FindByCategory(category home.Category, roomName string) []home.DeviceRef
	UpdateDevice(ctx context.Context, deviceID string, change home.StateChange) error
}

// Dispatcher executes intents against the registry.
type Dispatcher struct {
	reg           Registry
	log           *logging.Logger
	roomThreshold float64
}

// New creates a dispatcher. roomThreshold is the minimum fuzzy
// similarity for resolving a spoken room name; zero selects the
// default.
func New(reg Registry, log *logging.Logger, roomThreshold float64) *Dispatcher {
	if roomThreshold <= 0 {
		roomThreshold = fuzzy.DefaultThreshold
	}
	if log == nil {
		log = logging.Default()
	}
	return &Dispatcher{
		reg:           reg,
		log:           log,
		roomThreshold: roomThreshold,
	}
}

// Execute runs the action and composes the user-facing response.
//
// The room parameter, when present, is fuzzy-resolved against the live
// room list; an unresolvable room simply drops the constraint so the
// command still applies everywhere, mirroring how a missing room
// behaves.
func (d *Dispatcher) Execute(ctx context.Context, action intent.Action, params intent.Params) Result {
	room := d.resolveRoom(params.Room)

	result := d.execute(ctx, action, room, params)

	d.log.Debug("command dispatched",
		"action", string(action),
		"room", room,
		"outcome", string(result.Outcome),
		"changed", result.Changed,
	)

	return result
}

func (d *Dispatcher) execute(ctx context.Context, action intent.Action, room string, params intent.Params) Result {
	switch action {
	case intent.ActionTurnOnLights:
		return d.setPower(ctx, home.CategoryLight, room, true, "lights", nil)
	case intent.ActionTurnOffLights:
		return d.setPower(ctx, home.CategoryLight, room, false, "lights", nil)

	case intent.ActionTurnOnClimate:
		return d.setPower(ctx, home.CategoryClimate, room, true, "climate devices", nil)
	case intent.ActionTurnOffClimate:
		return d.setPower(ctx, home.CategoryClimate, room, false, "climate devices", nil)

	case intent.ActionTurnOnFan:
		return d.setPower(ctx, home.CategoryFan, room, true, "fans", nil)
	case intent.ActionTurnOffFan:
		return d.setPower(ctx, home.CategoryFan, room, false, "fans", nil)

	case intent.ActionOpenCurtains:
		return d.setPower(ctx, home.CategoryCurtain, room, true, "curtains", intPtr(positionOpen))
	case intent.ActionCloseCurtains:
		return d.setPower(ctx, home.CategoryCurtain, room, false, "curtains", intPtr(positionClosed))
	case intent.ActionOpenShutters:
		return d.setPower(ctx, home.CategoryShutter, room, true, "shutters", intPtr(positionOpen))
	case intent.ActionCloseShutters:
		return d.setPower(ctx, home.CategoryShutter, room, false, "shutters", intPtr(positionClosed))

	case intent.ActionLockDoors:
		return d.setPower(ctx, home.CategoryDoor, room, true, "locks", nil)
	case intent.ActionUnlockDoors:
		return d.setPower(ctx, home.CategoryDoor, room, false, "locks", nil)

	case intent.ActionArmSecurity:
		return d.setPower(ctx, home.CategorySecurity, room, true, "security devices", nil)
	case intent.ActionDisarmSecurity:
		return d.setPower(ctx, home.CategorySecurity, room, false, "security devices", nil)

	case intent.ActionPlayMusic:
		return d.playMusic(ctx, room, params.Song)
	case intent.ActionStopMusic:
		return d.setPower(ctx, home.CategorySpeaker, room, false, "speakers", nil)

	case intent.ActionSetTemperature:
		return d.setTemperature(ctx, room, params.Temperature)
	case intent.ActionSetBrightness:
		return d.setBrightness(ctx, room, params.Brightness)
	case intent.ActionSetFanSpeed:
		return d.setFanSpeed(ctx, room, params.Speed)

	case intent.ActionGoodMorning:
		return d.runRoutine(ctx, true, morningTemperature, "Good morning! Lights are on and the temperature is set to a comfortable 24 degrees.")
	case intent.ActionGoodnight:
		return d.runRoutine(ctx, false, nightTemperature, "Goodnight! I've turned the lights off and set the temperature for sleeping.")

	case intent.ActionSetVolume, intent.ActionMute:
		return d.notImplemented(room)
	}

	return Result{
		Response: "I'm not sure how to help with that yet.",
		Outcome:  OutcomeNotFound,
	}
}

// resolveRoom canonicalises a spoken room reference, or returns the
// empty string for no constraint.
func (d *Dispatcher) resolveRoom(spoken string) string {
	if spoken == "" {
		return ""
	}
	room, ok := fuzzy.ResolveRoom(spoken, d.reg.RoomNames(), d.roomThreshold)
	if !ok {
		return ""
	}
	return room
}

// setPower drives every device in a category to the desired on/off
// state, honouring the already-in-state short-circuit. A non-nil
// position is written alongside (curtains and shutters).
func (d *Dispatcher) setPower(ctx context.Context, category home.Category, room string, desired bool, noun string, position *int) Result {
	refs := d.reg.FindByCategory(category, room)
	if len(refs) == 0 {
		return d.notFound(noun, room)
	}

	var pending []home.DeviceRef
	for _, ref := range refs {
		if ref.On != desired {
			pending = append(pending, ref)
		}
	}

	state := stateWord(category, desired)

	if len(pending) == 0 {
		return Result{
			Response: fmt.Sprintf("The %s %s already %s.", noun, inRoom(room), state),
			Outcome:  OutcomeAlready,
		}
	}

	change := home.StateChange{On: &desired, Position: position}
	for _, ref := range pending {
		if err := d.reg.UpdateDevice(ctx, ref.DeviceID, change); err != nil {
			return d.failed(err)
		}
	}

	if len(pending) < len(refs) {
		return Result{
			Response: fmt.Sprintf("Some %s were already %s; I turned the rest %s.", noun, state, state),
			Outcome:  OutcomeExecuted,
			Changed:  len(pending),
		}
	}

	return Result{
		Response: fmt.Sprintf("%s %d %s%s.", doneVerb(state), len(pending), noun, forRoom(room)),
		Outcome:  OutcomeExecuted,
		Changed:  len(pending),
	}
}

// doneVerb phrases the completed action for a state word.
func doneVerb(state string) string {
	switch state {
	case "open":
		return "Opened"
	case "closed":
		return "Closed"
	case "locked":
		return "Locked"
	case "unlocked":
		return "Unlocked"
	case "armed":
		return "Armed"
	case "disarmed":
		return "Disarmed"
	}
	return "Turned " + state
}

func (d *Dispatcher) setTemperature(ctx context.Context, room string, temperature *float64) Result {
	if temperature == nil {
		return d.invalidParam("temperature")
	}

	refs := d.reg.FindByCategory(home.CategoryClimate, room)
	if len(refs) == 0 {
		return d.notFound("climate devices", room)
	}

	on := true
	change := home.StateChange{On: &on, Temperature: temperature}
	for _, ref := range refs {
		if err := d.reg.UpdateDevice(ctx, ref.DeviceID, change); err != nil {
			return d.failed(err)
		}
	}

	return Result{
		Response: fmt.Sprintf("Setting the temperature to %g degrees%s.", *temperature, forRoom(room)),
		Outcome:  OutcomeExecuted,
		Changed:  len(refs),
	}
}

func (d *Dispatcher) setBrightness(ctx context.Context, room string, brightness *int) Result {
	if brightness == nil {
		return d.invalidParam("brightness level")
	}

	refs := d.reg.FindByCategory(home.CategoryLight, room)
	if len(refs) == 0 {
		return d.notFound("lights", room)
	}

	on := true
	change := home.StateChange{On: &on, Brightness: brightness}
	for _, ref := range refs {
		if err := d.reg.UpdateDevice(ctx, ref.DeviceID, change); err != nil {
			return d.failed(err)
		}
	}

	return Result{
		Response: fmt.Sprintf("Set %d %s to %d%% brightness.", len(refs), plural(len(refs), "light", "lights"), *brightness),
		Outcome:  OutcomeExecuted,
		Changed:  len(refs),
	}
}

func (d *Dispatcher) setFanSpeed(ctx context.Context, room string, speed *int) Result {
	if speed == nil {
		return d.invalidParam("fan speed")
	}

	refs := d.reg.FindByCategory(home.CategoryFan, room)
	if len(refs) == 0 {
		return d.notFound("fans", room)
	}

	on := true
	change := home.StateChange{On: &on, Speed: speed}
	for _, ref := range refs {
		if err := d.reg.UpdateDevice(ctx, ref.DeviceID, change); err != nil {
			return d.failed(err)
		}
	}

	return Result{
		Response: fmt.Sprintf("Fan speed set to %d%s.", *speed, forRoom(room)),
		Outcome:  OutcomeExecuted,
		Changed:  len(refs),
	}
}

func (d *Dispatcher) playMusic(ctx context.Context, room, song string) Result {
	refs := d.reg.FindByCategory(home.CategorySpeaker, room)
	if len(refs) == 0 {
		return d.notFound("speakers", room)
	}

	on := true
	change := home.StateChange{On: &on}
	changed := 0
	for _, ref := range refs {
		if ref.On {
			continue
		}
		if err := d.reg.UpdateDevice(ctx, ref.DeviceID, change); err != nil {
			return d.failed(err)
		}
		changed++
	}

	what := "some music"
	if song != "" {
		what = song
	}
	return Result{
		Response: fmt.Sprintf("Playing %s%s.", what, forRoom(room)),
		Outcome:  OutcomeExecuted,
		Changed:  changed,
	}
}

// runRoutine drives every light to the target state and every climate
// device on at the set point. Routines deliberately skip the
// already-in-state short-circuit so the whole house lands in a known
// state.
func (d *Dispatcher) runRoutine(ctx context.Context, lightsOn bool, temperature float64, response string) Result {
	changed := 0

	lightChange := home.StateChange{On: &lightsOn}
	for _, ref := range d.reg.FindByCategory(home.CategoryLight, "") {
		if err := d.reg.UpdateDevice(ctx, ref.DeviceID, lightChange); err != nil {
			return d.failed(err)
		}
		changed++
	}

	on := true
	climateChange := home.StateChange{On: &on, Temperature: &temperature}
	for _, ref := range d.reg.FindByCategory(home.CategoryClimate, "") {
		if err := d.reg.UpdateDevice(ctx, ref.DeviceID, climateChange); err != nil {
			return d.failed(err)
		}
		changed++
	}

	return Result{
		Response: response,
		Outcome:  OutcomeExecuted,
		Changed:  changed,
	}
}

func (d *Dispatcher) notFound(noun, room string) Result {
	return Result{
		Response: fmt.Sprintf("I couldn't find any %s%s.", noun, forRoom(room)),
		Outcome:  OutcomeNotFound,
	}
}

func (d *Dispatcher) notImplemented(room string) Result {
	refs := d.reg.FindByCategory(home.CategorySpeaker, room)
	if len(refs) == 0 {
		return d.notFound("speakers", room)
	}
	return Result{
		Response: "I found your speakers, but volume control isn't supported yet.",
		Outcome:  OutcomeNotImplemented,
	}
}

func (d *Dispatcher) invalidParam(what string) Result {
	return Result{
		Response: fmt.Sprintf("I need a specific %s to set.", what),
		Outcome:  OutcomeInvalidParam,
	}
}

func (d *Dispatcher) failed(err error) Result {
	d.log.Error("device mutation failed", "error", err)
	return Result{
		Response: fmt.Sprintf("I had trouble controlling your smart home devices: %s", err.Error()),
		Outcome:  OutcomeFailed,
	}
}

// stateWord picks the verb pair for a category: open/closed for
// coverings, locked/unlocked for doors, armed/disarmed for security,
// on/off for everything else.
func stateWord(category home.Category, desired bool) string {
	switch category {
	case home.CategoryCurtain, home.CategoryShutter:
		if desired {
			return "open"
		}
		return "closed"
	case home.CategoryDoor:
		if desired {
			return "locked"
		}
		return "unlocked"
	case home.CategorySecurity:
		if desired {
			return "armed"
		}
		return "disarmed"
	}
	if desired {
		return "on"
	}
	return "off"
}

func inRoom(room string) string {
	if room == "" {
		return "are"
	}
	return fmt.Sprintf("in the %s are", room)
}

func forRoom(room string) string {
	if room == "" {
		return ""
	}
	return " in " + room
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

func intPtr(v int) *int { return &v }

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/argentmirror/argent-core/internal/assistant/fuzzy"
	"github.com/argentmirror/argent-core/internal/home"
)

// controlArgs is the argument payload of a control_devices call.
type controlArgs struct {
	// Action is one of turn_on, turn_off, toggle, set_brightness,
	// set_temperature, set_speed.
	Action string `json:"action"`

	// DeviceName narrows targets by name substring.
	DeviceName string `json:"device_name,omitempty"`

	// DeviceType narrows targets by type substring.
	DeviceType string `json:"device_type,omitempty"`

	// Room narrows targets to one room, resolved fuzzily.
	Room string `json:"room,omitempty"`

	// Value carries the numeric argument for the set_ actions.
	Value *float64 `json:"value,omitempty"`
}

// controlFunction describes the control_devices tool offered to the
// model.
func controlFunction() *openai.FunctionDefinition {
	return &openai.FunctionDefinition{
		Name:        controlFunctionName,
		Description: "Control smart home devices. Use for any request to switch, toggle or adjust devices.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"action": {
					"type": "string",
					"enum": ["turn_on", "turn_off", "toggle", "set_brightness", "set_temperature", "set_speed"],
					"description": "What to do with the matched devices"
				},
				"device_name": {
					"type": "string",
					"description": "Match devices whose name contains this text"
				},
				"device_type": {
					"type": "string",
					"description": "Match devices whose type contains this text, e.g. light, fan, thermostat"
				},
				"room": {
					"type": "string",
					"description": "Restrict to devices in this room"
				},
				"value": {
					"type": "number",
					"description": "Numeric value for set_brightness (0-100), set_temperature (celsius) or set_speed (1-5)"
				}
			},
			"required": ["action"]
		}`),
	}
}

// target pairs a matched device with its room for narration.
type target struct {
	device   home.Device
	roomName string
}

// handleControlCall executes a control_devices invocation and composes
// the per-device outcome listing.
func (a *Assistant) handleControlCall(ctx context.Context, arguments string) string {
	var args controlArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		a.log.Warn("assistant sent malformed control arguments", "error", err)
		return ""
	}

	targets := a.resolveTargets(args)
	if len(targets) == 0 {
		return "I couldn't find any devices matching that."
	}

	var lines []string
	for _, t := range targets {
		line, err := a.controlDevice(ctx, t, args)
		if err != nil {
			a.log.Error("assistant device control failed",
				"device_id", t.device.ID, "error", err)
			return "I had trouble controlling your smart home devices. Please try again."
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// resolveTargets matches devices against the call's criteria: name
// substring, type substring, and a fuzzily resolved room.
func (a *Assistant) resolveTargets(args controlArgs) []target {
	roomFilter := ""
	if args.Room != "" {
		if resolved, ok := fuzzy.ResolveRoom(args.Room, a.home.RoomNames(), a.roomThreshold); ok {
			roomFilter = resolved
		} else {
			// An explicit room that matches nothing matches no devices.
			return nil
		}
	}

	nameFilter := strings.ToLower(args.DeviceName)
	typeFilter := strings.ToLower(args.DeviceType)

	var targets []target
	for _, room := range a.home.Rooms() {
		if roomFilter != "" && !strings.EqualFold(room.Name, roomFilter) {
			continue
		}
		for i := range room.Devices {
			d := room.Devices[i]
			if nameFilter != "" && !strings.Contains(strings.ToLower(d.Name), nameFilter) {
				continue
			}
			if typeFilter != "" && !strings.Contains(strings.ToLower(string(d.Type)), typeFilter) {
				continue
			}
			targets = append(targets, target{device: d, roomName: room.Name})
		}
	}
	return targets
}

// controlDevice applies the action to one device and returns its
// outcome line.
func (a *Assistant) controlDevice(ctx context.Context, t target, args controlArgs) (string, error) {
	name := fmt.Sprintf("%s in %s", t.device.Name, t.roomName)

	switch args.Action {
	case "turn_on", "turn_off":
		desired := args.Action == "turn_on"
		if t.device.On == desired {
			return fmt.Sprintf("✅ %s was already %s", name, onOff(desired)), nil
		}
		if err := a.home.UpdateDevice(ctx, t.device.ID, home.StateChange{On: &desired}); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Turned %s %s", onOff(desired), name), nil

	case "toggle":
		desired := !t.device.On
		if err := a.home.UpdateDevice(ctx, t.device.ID, home.StateChange{On: &desired}); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Turned %s %s", onOff(desired), name), nil

	case "set_brightness":
		if args.Value == nil {
			return fmt.Sprintf("✅ %s needs a brightness value", name), nil
		}
		on := true
		level := clampInt(int(*args.Value), 0, 100)
		if err := a.home.UpdateDevice(ctx, t.device.ID, home.StateChange{On: &on, Brightness: &level}); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Set %s to %d%% brightness", name, level), nil

	case "set_temperature":
		if args.Value == nil {
			return fmt.Sprintf("✅ %s needs a temperature value", name), nil
		}
		on := true
		if err := a.home.UpdateDevice(ctx, t.device.ID, home.StateChange{On: &on, Temperature: args.Value}); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Set %s to %g degrees", name, *args.Value), nil

	case "set_speed":
		if args.Value == nil {
			return fmt.Sprintf("✅ %s needs a speed value", name), nil
		}
		on := true
		speed := clampInt(int(*args.Value), 1, 5)
		if err := a.home.UpdateDevice(ctx, t.device.ID, home.StateChange{On: &on, Speed: &speed}); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Set %s to speed %d", name, speed), nil
	}

	return fmt.Sprintf("✅ %s: unrecognised action %q", name, args.Action), nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

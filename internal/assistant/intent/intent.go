package intent

// Action identifies the dispatcher operation an intent maps to.
type Action string

// Recognised actions.
const (
	ActionGoodMorning Action = "good_morning"
	ActionGoodnight   Action = "goodnight"

	ActionTurnOnLights  Action = "turn_on_lights"
	ActionTurnOffLights Action = "turn_off_lights"
	ActionSetBrightness Action = "set_light_brightness"

	ActionSetTemperature Action = "set_temperature"
	ActionTurnOnClimate  Action = "turn_on_climate"
	ActionTurnOffClimate Action = "turn_off_climate"

	ActionSetFanSpeed Action = "set_fan_speed"
	ActionTurnOnFan   Action = "turn_on_fan"
	ActionTurnOffFan  Action = "turn_off_fan"

	ActionOpenCurtains  Action = "open_curtains"
	ActionCloseCurtains Action = "close_curtains"
	ActionOpenShutters  Action = "open_shutters"
	ActionCloseShutters Action = "close_shutters"

	ActionLockDoors   Action = "lock_doors"
	ActionUnlockDoors Action = "unlock_doors"

	ActionArmSecurity    Action = "arm_security"
	ActionDisarmSecurity Action = "disarm_security"

	ActionPlayMusic Action = "play_music"
	ActionStopMusic Action = "stop_music"
	ActionSetVolume Action = "set_volume"
	ActionMute      Action = "mute"

	ActionUnknown Action = "unknown"
)

// Confidence levels assigned by the parser.
const (
	// ConfidenceWithParams applies when a rule matched and extracted at
	// least one parameter.
	ConfidenceWithParams = 0.95

	// ConfidenceBareMatch applies when a rule matched with no parameters.
	ConfidenceBareMatch = 0.85

	// ConfidenceUnknown applies when nothing matched.
	ConfidenceUnknown = 0.1
)

// Params carries the parameters extracted alongside an action. Nil or
// empty fields were not present in the input.
type Params struct {
	Room        string   `json:"room,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Brightness  *int     `json:"brightness,omitempty"`
	Speed       *int     `json:"speed,omitempty"`
	Song        string   `json:"song,omitempty"`
}

// count returns how many parameters were extracted.
func (p Params) count() int {
	n := 0
	if p.Room != "" {
		n++
	}
	if p.Temperature != nil {
		n++
	}
	if p.Brightness != nil {
		n++
	}
	if p.Speed != nil {
		n++
	}
	if p.Song != "" {
		n++
	}
	return n
}

// Intent is the parser's verdict on one input.
type Intent struct {
	Action     Action  `json:"action"`
	Params     Params  `json:"params"`
	Confidence float64 `json:"confidence"`
}

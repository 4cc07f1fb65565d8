package intent

// paramKind names a parameter extractor a rule wants to run.
type paramKind int

const (
	paramRoom paramKind = iota
	paramTemperature
	paramBrightness
	paramSpeed
	paramSong
)

// keywordGroup is satisfied when any one of its phrases appears in the
// input on word boundaries.
type keywordGroup []string

// rule binds an action to the keyword groups that select it. Every
// group must be satisfied; any phrase in none vetoes the rule.
type rule struct {
	action  Action
	all     []keywordGroup
	none    []string
	extract []paramKind
}

// catalog is the ordered intent table. Order is priority: the first
// matching rule wins, so routines come first and specific setters come
// before their generic on/off counterparts.
var catalog = []rule{
	{
		action: ActionGoodMorning,
		all:    []keywordGroup{{"good morning"}},
	},
	{
		action: ActionGoodnight,
		all:    []keywordGroup{{"good night", "goodnight"}},
	},
	{
		action: ActionSetTemperature,
		all: []keywordGroup{{
			"temperature", "degrees", "degree", "thermostat",
			"warmer", "cooler", "hotter", "colder",
			"really cold", "really hot", "freezing",
			"make it hot", "make it cold", "make it warm",
		}},
		none:    []string{"fan"},
		extract: []paramKind{paramTemperature, paramRoom},
	},
	{
		action: ActionTurnOnClimate,
		all: []keywordGroup{
			{"turn on", "switch on", "start"},
			{"ac", "air conditioning", "air conditioner", "climate", "heating"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionTurnOffClimate,
		all: []keywordGroup{
			{"turn off", "switch off", "stop"},
			{"ac", "air conditioning", "air conditioner", "climate", "heating"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionSetBrightness,
		all: []keywordGroup{{
			"dim", "brighten", "brightness", "bright",
		}},
		extract: []paramKind{paramBrightness, paramRoom},
	},
	{
		action: ActionTurnOnLights,
		all: []keywordGroup{
			{"turn on", "switch on", "lights on", "light on"},
			{"light", "lights", "lamp", "lamps"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionTurnOffLights,
		all: []keywordGroup{
			{"turn off", "switch off", "lights off", "light off", "kill"},
			{"light", "lights", "lamp", "lamps"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionSetFanSpeed,
		all: []keywordGroup{
			{"fan"},
			{"speed", "faster", "slower", "level"},
		},
		extract: []paramKind{paramSpeed, paramRoom},
	},
	{
		action: ActionTurnOnFan,
		all: []keywordGroup{
			{"turn on", "switch on", "start"},
			{"fan", "ventilator"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionTurnOffFan,
		all: []keywordGroup{
			{"turn off", "switch off", "stop"},
			{"fan", "ventilator"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionOpenShutters,
		all: []keywordGroup{
			{"open", "raise"},
			{"shutter", "shutters"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionCloseShutters,
		all: []keywordGroup{
			{"close", "shut", "lower"},
			{"shutter", "shutters"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionOpenCurtains,
		all: []keywordGroup{
			{"open", "raise"},
			{"curtain", "curtains", "blind", "blinds", "drapes", "shades"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionCloseCurtains,
		all: []keywordGroup{
			{"close", "shut", "lower", "draw"},
			{"curtain", "curtains", "blind", "blinds", "drapes", "shades"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionUnlockDoors,
		all: []keywordGroup{
			{"unlock"},
			{"door", "doors", "gate"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionLockDoors,
		all: []keywordGroup{
			{"lock"},
			{"door", "doors", "gate", "up", "everything", "house"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionArmSecurity,
		all: []keywordGroup{
			{"arm", "enable", "activate", "turn on"},
			{"security", "alarm", "surveillance"},
		},
		none:    []string{"disarm"},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionDisarmSecurity,
		all: []keywordGroup{
			{"disarm", "disable", "deactivate", "turn off"},
			{"security", "alarm", "surveillance"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionStopMusic,
		all: []keywordGroup{
			{"stop", "pause"},
			{"music", "song", "audio", "playback", "speaker"},
		},
		extract: []paramKind{paramRoom},
	},
	{
		action:  ActionSetVolume,
		all:     []keywordGroup{{"volume"}},
		extract: []paramKind{paramRoom},
	},
	{
		action: ActionMute,
		all:    []keywordGroup{{"mute", "unmute"}},
	},
	{
		action:  ActionPlayMusic,
		all:     []keywordGroup{{"play"}},
		extract: []paramKind{paramSong, paramRoom},
	},
}

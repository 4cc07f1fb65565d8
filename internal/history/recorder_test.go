package history

import (
	"testing"

	"github.com/argentmirror/argent-core/internal/home"
)

// mockSink records every point it receives.
type mockSink struct {
	states     []string
	attributes []string
	commands   []string
}

func (m *mockSink) WriteDeviceState(deviceID, _ string, _ bool) {
	m.states = append(m.states, deviceID)
}

func (m *mockSink) WriteDeviceAttribute(deviceID, _, attribute string, _ float64) {
	m.attributes = append(m.attributes, deviceID+"/"+attribute)
}

func (m *mockSink) WriteCommandMetric(action, _ string, _ int) {
	m.commands = append(m.commands, action)
}

func TestRecordUpdate(t *testing.T) {
	sink := &mockSink{}
	rec := New(sink, nil)

	temp := 21.5
	speed := 3
	rec.RecordUpdate(home.DeviceUpdate{
		Device: home.Device{
			ID:          "dev-1",
			On:          true,
			Temperature: &temp,
			Speed:       &speed,
		},
		RoomName: "Bedroom",
		Source:   home.SourceLocal,
	})

	if len(sink.states) != 1 || sink.states[0] != "dev-1" {
		t.Errorf("states = %v, want one entry for dev-1", sink.states)
	}
	if len(sink.attributes) != 2 {
		t.Fatalf("attributes = %v, want temperature and speed", sink.attributes)
	}
	if sink.attributes[0] != "dev-1/temperature" || sink.attributes[1] != "dev-1/speed" {
		t.Errorf("attributes = %v", sink.attributes)
	}
}

func TestRecordCommand(t *testing.T) {
	sink := &mockSink{}
	rec := New(sink, nil)

	rec.RecordCommand("turn_on_lights", "intent", 2)

	if len(sink.commands) != 1 || sink.commands[0] != "turn_on_lights" {
		t.Errorf("commands = %v", sink.commands)
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	rec := New(nil, nil)

	rec.RecordUpdate(home.DeviceUpdate{Device: home.Device{ID: "dev-1"}})
	rec.RecordCommand("turn_on_lights", "intent", 1)
	rec.Close()
}

package history

import (
	"github.com/argentmirror/argent-core/internal/home"
	"github.com/argentmirror/argent-core/internal/infrastructure/logging"
)

// Sink receives measurement points. Satisfied by the InfluxDB client;
// a nil sink disables recording entirely.
type Sink interface {
	WriteDeviceState(deviceID, roomName string, on bool)
	WriteDeviceAttribute(deviceID, roomName, attribute string, value float64)
	WriteCommandMetric(action, source string, changed int)
}

// Recorder forwards registry updates and command outcomes to the sink.
type Recorder struct {
	sink        Sink
	log         *logging.Logger
	unsubscribe func()
}

// New creates a recorder writing to the given sink.
func New(sink Sink, log *logging.Logger) *Recorder {
	if log == nil {
		log = logging.Default()
	}
	return &Recorder{
		sink: sink,
		log:  log,
	}
}

// Attach subscribes the recorder to registry updates. Call Close to
// detach.
func (r *Recorder) Attach(reg *home.Registry) {
	if r.sink == nil {
		return
	}
	r.unsubscribe = reg.Subscribe(r.RecordUpdate)
}

// RecordUpdate writes the state series and one series per populated
// numeric attribute.
func (r *Recorder) RecordUpdate(u home.DeviceUpdate) {
	if r.sink == nil {
		return
	}

	d := u.Device
	r.sink.WriteDeviceState(d.ID, u.RoomName, d.On)

	if d.Temperature != nil {
		r.sink.WriteDeviceAttribute(d.ID, u.RoomName, "temperature", *d.Temperature)
	}
	if d.Brightness != nil {
		r.sink.WriteDeviceAttribute(d.ID, u.RoomName, "brightness", float64(*d.Brightness))
	}
	if d.Speed != nil {
		r.sink.WriteDeviceAttribute(d.ID, u.RoomName, "speed", float64(*d.Speed))
	}
	if d.Position != nil {
		r.sink.WriteDeviceAttribute(d.ID, u.RoomName, "position", float64(*d.Position))
	}
}

// RecordCommand writes one assistant command outcome. Wired as the
// pipeline's command observer.
func (r *Recorder) RecordCommand(action, source string, changed int) {
	if r.sink == nil {
		return
	}
	r.sink.WriteCommandMetric(action, source, changed)
}

// Close detaches the recorder from the registry.
func (r *Recorder) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

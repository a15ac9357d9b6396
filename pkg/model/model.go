// Package model defines the CoCon data model names a client can subscribe to.
//
// Model names are opaque strings on the wire; this package only provides the
// well-known values so callers do not have to spell them by hand. The client
// core never interprets them.
package model

// Model identifies a CoCon data model.
type Model string

// Known CoCon data models.
const (
	Room           Model = "Room"
	Microphone     Model = "Microphone"
	MeetingAgenda  Model = "MeetingAgenda"
	Voting         Model = "Voting"
	Timer          Model = "Timer"
	Delegate       Model = "Delegate"
	Audio          Model = "Audio"
	Interpretation Model = "Interpretation"
	Logging        Model = "Logging"
	ButtonLEDEvent Model = "ButtonLED_Event"
	Interactive    Model = "Interactive"
	External       Model = "External"
	Intercom       Model = "Intercom"
	Video          Model = "Video"
)

// String returns the wire name of the model.
func (m Model) String() string {
	return string(m)
}

// All returns every known model name.
func All() []Model {
	return []Model{
		Room,
		Microphone,
		MeetingAgenda,
		Voting,
		Timer,
		Delegate,
		Audio,
		Interpretation,
		Logging,
		ButtonLEDEvent,
		Interactive,
		External,
		Intercom,
		Video,
	}
}

// Names converts a list of models to their wire names.
func Names(models []Model) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.String()
	}
	return names
}

package ai

// Intents returned by ParseUserIntent.
const (
	IntentTrip           = "trip"
	IntentChangeCar      = "change_car"
	IntentModifyLocation = "modify_location"
	IntentChat           = "chat"
)

// Edit targets for IntentModifyLocation.
const (
	EditStart = "start"
	EditEnd   = "end"
	EditBoth  = "both"
)

// NoMatch is what the model answers when no saved place fits.
const NoMatch = "NO_MATCH"

// IntentResult captures the structured output from the AI model.
type IntentResult struct {
	// Intent is one of the Intent* constants.
	Intent string `json:"intent"`

	// StartLocation and Destination are the place texts exactly as the user
	// phrased them. Nil when the message does not mention them.
	StartLocation *string `json:"start_location,omitempty"`
	Destination   *string `json:"destination,omitempty"`

	// CarClass is the requested vehicle tier in the user's words, if any.
	CarClass *string `json:"car_class,omitempty"`

	// EditTarget says which end of the last trip to change for
	// IntentModifyLocation.
	EditTarget string `json:"edit_target,omitempty"`

	// Reply is a short Jordanian-Arabic answer for chat or clarification turns.
	Reply string `json:"reply"`
}

type placeMatch struct {
	Match string `json:"match"`
}

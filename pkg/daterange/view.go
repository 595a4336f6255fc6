package daterange

// Input is the rendered state of one date input. Min and Max are advisory
// native bounds.
type Input struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	Min        string `json:"min,omitempty"`
	Max        string `json:"max,omitempty"`
	Required   bool   `json:"required"`
	Disabled   bool   `json:"disabled"`
	Invalid    bool   `json:"invalid"`
	HelperText string `json:"helperText,omitempty"`
}

// Button is the rendered submit control.
type Button struct {
	Label        string `json:"label"`
	IdleLabel    string `json:"idleLabel"`
	LoadingLabel string `json:"loadingLabel"`
	Type         string `json:"type"`
	Disabled     bool   `json:"disabled"`
}

// View is a renderer-agnostic snapshot of the field.
type View struct {
	Today    string   `json:"today"`
	Start    Input    `json:"start"`
	End      Input    `json:"end"`
	Messages []string `json:"messages,omitempty"`
	Submit   Button   `json:"submit"`
}

// Inputs returns the two inputs in display order.
func (v View) Inputs() []Input {
	return []Input{v.Start, v.End}
}

// HasMessages reports whether the message block should render.
func (v View) HasMessages() bool {
	return len(v.Messages) > 0
}

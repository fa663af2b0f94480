package component

// Record is the import shape of an actor; optional fields are pointers so omission is detectable
type Record struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	X          *float64    `json:"x,omitempty" yaml:"x,omitempty"`
	Y          *float64    `json:"y,omitempty" yaml:"y,omitempty"`
	Size       *float64    `json:"size,omitempty" yaml:"size,omitempty"`
	Color      string      `json:"color,omitempty" yaml:"color,omitempty"`
	Visible    *bool       `json:"visible,omitempty" yaml:"visible,omitempty"`
	WaitUntil  int64       `json:"waitUntilFrame,omitempty" yaml:"wait_until_frame,omitempty"`
	Queue      []Action    `json:"actionQueue,omitempty" yaml:"action_queue,omitempty"`
	QueueIndex int         `json:"currentActionIndex,omitempty" yaml:"current_action_index,omitempty"`
	State      ActionState `json:"actionState,omitempty" yaml:"action_state,omitempty"`
}

// Actor converts the record, applying defaults for omitted fields
func (r Record) Actor() Actor {
	a := Actor{
		ID:         r.ID,
		Name:       r.Name,
		Color:      r.Color,
		Visible:    true,
		WaitUntil:  r.WaitUntil,
		Queue:      r.Queue,
		QueueIndex: r.QueueIndex,
		State:      r.State,
	}
	if r.X != nil {
		a.X = *r.X
	}
	if r.Y != nil {
		a.Y = *r.Y
	}
	if r.Size != nil {
		a.Size = *r.Size
	}
	if r.Visible != nil {
		a.Visible = *r.Visible
	}
	if a.Name == "" {
		a.Name = a.ID
	}
	return Normalize(a)
}

// RecordOf converts an actor back to its export shape with every field present
func RecordOf(a Actor) Record {
	x, y, size, visible := a.X, a.Y, a.Size, a.Visible
	return Record{
		ID:         a.ID,
		Name:       a.Name,
		X:          &x,
		Y:          &y,
		Size:       &size,
		Color:      a.Color,
		Visible:    &visible,
		WaitUntil:  a.WaitUntil,
		Queue:      a.Clone().Queue,
		QueueIndex: a.QueueIndex,
		State:      a.State,
	}
}

package sandbox

import (
	"fmt"

	"github.com/dop251/goja"
	"github.com/mitchellh/mapstructure"

	"github.com/lixenwraith/spritestage/component"
)

// toObject builds the JavaScript view of a private actor copy
// Property names follow the actor's mapstructure tags
func (x *Executor) toObject(a component.Actor) *goja.Object {
	obj := x.vm.NewObject()
	_ = obj.Set("id", a.ID)
	_ = obj.Set("name", a.Name)
	_ = obj.Set("x", a.X)
	_ = obj.Set("y", a.Y)
	_ = obj.Set("size", a.Size)
	_ = obj.Set("color", a.Color)
	_ = obj.Set("visible", a.Visible)
	_ = obj.Set("waitUntilFrame", a.WaitUntil)
	_ = obj.Set("currentActionIndex", a.QueueIndex)
	_ = obj.Set("actionState", string(a.State))

	queue := make([]interface{}, len(a.Queue))
	for i, act := range a.Queue {
		item := x.vm.NewObject()
		_ = item.Set("type", act.Type)
		args := make([]interface{}, len(act.Args))
		for j, v := range act.Args {
			args[j] = v
		}
		_ = item.Set("args", x.vm.NewArray(args...))
		queue[i] = item
	}
	_ = obj.Set("actionQueue", x.vm.NewArray(queue...))
	return obj
}

// fromObject decodes a JavaScript actor view back onto dst
// Identity fields are restored after decoding; programs cannot rename or re-key actors.
// Missing properties keep dst's value.
func fromObject(obj *goja.Object, dst *component.Actor) error {
	raw, ok := obj.Export().(map[string]interface{})
	if !ok {
		return fmt.Errorf("actor is no longer an object")
	}
	id, name := dst.ID, dst.Name
	if _, has := raw["actionQueue"]; has {
		// Decoding into a non-nil slice only overwrites a prefix
		dst.Queue = nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return err
	}

	dst.ID, dst.Name = id, name
	if len(dst.Queue) == 0 {
		dst.Queue = nil
	}
	if !finite(dst.X) || !finite(dst.Y) || !finite(dst.Size) {
		return ErrNonFinite
	}
	if !dst.State.Valid() {
		return fmt.Errorf("unknown action state %q", dst.State)
	}
	return nil
}

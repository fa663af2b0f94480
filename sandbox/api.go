package sandbox

import (
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/lixenwraith/spritestage/event"
	"github.com/lixenwraith/spritestage/parameter"
)

const defaultDrawColor = "#000000"

// installAPI binds the fixed primitive surface; nothing else from the host is reachable
func (x *Executor) installAPI() {
	vm := x.vm

	_ = vm.Set("width", x.width)
	_ = vm.Set("height", x.height)
	_ = vm.Set("frame", 0)
	_ = vm.Set("pointer", goja.Null())
	_ = vm.Set("sprites", vm.NewArray())

	_ = vm.Set("clear", func(call goja.FunctionCall) goja.Value {
		x.draw(DrawCommand{Op: OpClear, Color: colorArg(call, 0, "#ffffff")})
		return goja.Undefined()
	})
	_ = vm.Set("rect", func(call goja.FunctionCall) goja.Value {
		x.draw(DrawCommand{
			Op:    OpRect,
			X:     floatArg(call, 0),
			Y:     floatArg(call, 1),
			W:     floatArg(call, 2),
			H:     floatArg(call, 3),
			Color: colorArg(call, 4, defaultDrawColor),
		})
		return goja.Undefined()
	})
	_ = vm.Set("circle", func(call goja.FunctionCall) goja.Value {
		x.draw(DrawCommand{
			Op:    OpCircle,
			X:     floatArg(call, 0),
			Y:     floatArg(call, 1),
			R:     floatArg(call, 2),
			Color: colorArg(call, 3, defaultDrawColor),
		})
		return goja.Undefined()
	})
	_ = vm.Set("line", func(call goja.FunctionCall) goja.Value {
		x.draw(DrawCommand{
			Op:    OpLine,
			X:     floatArg(call, 0),
			Y:     floatArg(call, 1),
			X2:    floatArg(call, 2),
			Y2:    floatArg(call, 3),
			Color: colorArg(call, 4, defaultDrawColor),
		})
		return goja.Undefined()
	})
	_ = vm.Set("text", func(call goja.FunctionCall) goja.Value {
		x.draw(DrawCommand{
			Op:    OpText,
			Text:  call.Argument(0).String(),
			X:     floatArg(call, 1),
			Y:     floatArg(call, 2),
			Color: colorArg(call, 3, defaultDrawColor),
		})
		return goja.Undefined()
	})
	_ = vm.Set("log", func(call goja.FunctionCall) goja.Value {
		x.record(event.SeverityInfo, joinArgs(call))
		return goja.Undefined()
	})
	_ = vm.Set("warn", func(call goja.FunctionCall) goja.Value {
		x.record(event.SeverityWarn, joinArgs(call))
		return goja.Undefined()
	})
	_ = vm.Set("tone", func(call goja.FunctionCall) goja.Value {
		if x.effects == nil {
			return goja.Undefined()
		}
		freq := floatArg(call, 0)
		d := time.Duration(floatArg(call, 1) * float64(time.Millisecond))
		if freq <= 0 || d <= 0 {
			return goja.Undefined()
		}
		if d > parameter.MaxToneDuration {
			d = parameter.MaxToneDuration
		}
		x.effects.Tones = append(x.effects.Tones, Tone{Freq: freq, Duration: d})
		return goja.Undefined()
	})
	_ = vm.Set("random", func(call goja.FunctionCall) goja.Value {
		lo, hi := 0.0, 1.0
		if len(call.Arguments) == 1 {
			hi = floatArg(call, 0)
		} else if len(call.Arguments) >= 2 {
			lo, hi = floatArg(call, 0), floatArg(call, 1)
		}
		return vm.ToValue(lo + x.rng.Float64()*(hi-lo))
	})
	_ = vm.Set("sprite", func(call goja.FunctionCall) goja.Value {
		if obj, ok := x.byID[call.Argument(0).String()]; ok {
			return obj
		}
		return goja.Undefined()
	})
}

func (x *Executor) draw(cmd DrawCommand) {
	if x.effects == nil {
		return
	}
	x.effects.Draws = append(x.effects.Draws, cmd)
}

func floatArg(call goja.FunctionCall, i int) float64 {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	f := v.ToFloat()
	if !finite(f) {
		return 0
	}
	return f
}

func colorArg(call goja.FunctionCall, i int, def string) string {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return def
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return def
	}
	return s
}

func joinArgs(call goja.FunctionCall) string {
	parts := make([]string, len(call.Arguments))
	for i, a := range call.Arguments {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

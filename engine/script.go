package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

// DefaultScriptTimeout bounds each inline script.
const DefaultScriptTimeout = 250 * time.Millisecond

// runScripts executes the document's inline scripts against a minimal DOM
// surface: document.title (read/write), document.URL and location.href.
// Script errors are logged and do not stop later scripts.
func runScripts(doc *Document, timeout time.Duration, logger zerolog.Logger) {
	if len(doc.Scripts) == 0 {
		return
	}
	vm := goja.New()
	if err := installGlobals(vm, doc, logger); err != nil {
		logger.Warn().Err(err).Msg("script globals unavailable")
		return
	}

	for i, src := range doc.Scripts {
		if err := runOne(vm, src, timeout); err != nil {
			logger.Debug().Err(err).Int("script", i).Msg("inline script failed")
		}
	}
	doc.Title = collapseSpace(doc.Title)
}

func runOne(vm *goja.Runtime, src string, timeout time.Duration) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script panic: %v", p)
		}
	}()

	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt("script timeout")
	})
	defer func() {
		timer.Stop()
		vm.ClearInterrupt()
	}()

	_, err = vm.RunString(src)
	return err
}

func installGlobals(vm *goja.Runtime, doc *Document, logger zerolog.Logger) error {
	href := ""
	if doc.URL != nil {
		href = doc.URL.String()
	}

	document := vm.NewObject()
	err := document.DefineAccessorProperty("title",
		vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(doc.Title)
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			doc.Title = call.Argument(0).String()
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)
	if err != nil {
		return fmt.Errorf("define document.title: %w", err)
	}
	if err := document.Set("URL", href); err != nil {
		return fmt.Errorf("define document.URL: %w", err)
	}

	location := vm.NewObject()
	if err := location.Set("href", href); err != nil {
		return fmt.Errorf("define location.href: %w", err)
	}

	console := vm.NewObject()
	if err := console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.String()
		}
		logger.Debug().Str("source", "console").Msg(strings.Join(args, " "))
		return goja.Undefined()
	}); err != nil {
		return fmt.Errorf("define console.log: %w", err)
	}

	for name, v := range map[string]any{
		"document": document,
		"location": location,
		"console":  console,
		"window":   vm.GlobalObject(),
	} {
		if err := vm.Set(name, v); err != nil {
			return fmt.Errorf("define %s: %w", name, err)
		}
	}
	return nil
}

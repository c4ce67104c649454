//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/smallyu/go-ethsig/internal/bridge"
)

var b = bridge.New(nil)

func main() {
	c := make(chan struct{}, 0)

	fmt.Println("Go EthSig WASM Initialized")

	// Expose Go functions to JS
	js.Global().Set("GoEthSig", map[string]interface{}{
		"publicKey":       js.FuncOf(wrap(b.PublicKey)),
		"address":         js.FuncOf(wrap(b.Address)),
		"sign":            js.FuncOf(wrap(b.Sign)),
		"verify":          js.FuncOf(wrap(b.Verify)),
		"recover":         js.FuncOf(wrap(b.Recover)),
		"signTransaction": js.FuncOf(wrap(b.SignTransaction)),
	})

	<-c
}

// wrap adapts a single-argument bridge call to a JS function.
// Arguments:
// 0: JSON request, or a hex key for publicKey and address
// Returns:
// JSON string, or a string starting with "error: "
func wrap(fn func(string) (string, error)) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if len(args) != 1 {
			return "error: expected 1 argument"
		}
		out, err := fn(args[0].String())
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return out
	}
}

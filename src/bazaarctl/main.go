// bazaarctl is the command-line client for the bazaar marketplace API.
package main

import (
	"github.com/bitswalk/bazaar/src/bazaarctl/internal/cmd"
)

func main() {
	cmd.Execute()
}

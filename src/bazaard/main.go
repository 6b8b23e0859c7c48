// bazaard is the bazaar marketplace API server.
// It exposes the REST API on port 8000 and documents it at /swagger.
package main

import (
	"github.com/bitswalk/bazaar/src/bazaard/core"
)

func main() {
	core.Execute()
}

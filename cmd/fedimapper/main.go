// Command fedimapper is the default binary: it wires no custom handler,
// datastore, or dispatcher, matching the teacher's documented minimal
// entrypoint (cmd.Execute() alone).
package main

import "github.com/tedivm/fedimapper/cmd"

func main() {
	cmd.Execute()
}

// Command searchctl runs search requests against the entities declared in a
// YAML configuration file.
//
//	searchctl --config blog.yaml --entity Post find request.json
//	echo '{"condition": {"field": "status", "operator": "IS_NULL"}}' | searchctl -c blog.yaml -e Post count -
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
